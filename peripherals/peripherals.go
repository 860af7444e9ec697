// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package peripherals binds the logical resources spec.md §4.F describes —
// three GPIO pins, a PWM slice per channel, one PIO block, and a nine
// channel DMA mesh — to the operating system handles that actually own
// them, following the teacher corpus's host/bcm283x driver-registration
// idiom: acquire once at startup, fail loudly and specifically if another
// process already holds the resource.
package peripherals

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"go.ledwave.dev/ledwave/dma"
	"go.ledwave.dev/ledwave/gpio"
	"go.ledwave.dev/ledwave/gpio/gpioreg"
	"go.ledwave.dev/ledwave/pio"
)

// ErrPeripheralBusy is returned by Acquire when a requested GPIO line is
// already owned by another process, wrapping the gpiocdev-reported cause.
var ErrPeripheralBusy = errors.New("peripherals: resource already owned by another process")

// ErrHardwareFault is the sentinel for a peripheral condition this driver
// cannot recover from on its own, e.g. a DMA channel surfacing a bus error
// after acquisition. No function in this module returns it.
var ErrHardwareFault = errors.New("peripherals: unrecoverable hardware fault")

// PinAssignment names the three GPIO lines the PIO block's three state
// machines drive, on a gpiochip device node (spec.md §4.F).
type PinAssignment struct {
	Chip          string // e.g. "gpiochip0"
	Red           int
	Green         int
	Blue          int
}

// ResourcePack is every hardware resource the driver needs bound together:
// the three owned GPIO lines, the PIO program description, and the DMA
// mesh topology. It is the sole argument pump.New's caller needs beyond a
// colorstream.Iterator.
type ResourcePack struct {
	Red, Green, Blue gpio.PinOut
	Program          pio.Program
	Mesh             *dma.Mesh
	PWM              [3]*pio.SliceRegisters // index 0=R, 1=G, 2=B
}

// Close releases every GPIO line and PWM register mapping this pack owns,
// and removes them from the gpioreg registry. Safe to call once Acquire
// has returned a non-nil pack; calling it twice is a programming error,
// not a defined failure mode, matching the teacher corpus's host driver
// Close methods.
func (r *ResourcePack) Close() error {
	var err error
	names := [3]string{"red", "green", "blue"}
	for i, l := range []gpio.PinOut{r.Red, r.Green, r.Blue} {
		if l != nil {
			gpioreg.Unregister(names[i])
			err = errors.Join(err, l.Halt())
		}
	}
	for _, p := range r.PWM {
		if p != nil {
			err = errors.Join(err, p.Close())
		}
	}
	return err
}

// ClockConfig fixes the PIO tick grid every state machine and PWM slice is
// programmed against (spec.md §4.C).
type ClockConfig struct {
	SystemClockHz int64
	MicrosPerTick int
}

// Acquire requests the three PIO-driven GPIO lines named by pins as
// outputs, programs the three PWM slices' divider/top/enable from clk,
// builds the DMA mesh over fwd (the six forward channels, in [R-A, R-B,
// G-A, G-B, B-A, B-B] order) and refill (the three TX refill channels, in
// [R, G, B] order), and returns the bound ResourcePack.
//
// If any line is already held by another process, Acquire releases any
// lines and register mappings it already grabbed and returns
// ErrPeripheralBusy.
func Acquire(pins PinAssignment, clk ClockConfig, fwd [6]dma.Channel, refill [3]dma.Channel) (*ResourcePack, error) {
	red, err := acquireNamed(pins.Chip, pins.Red, "red")
	if err != nil {
		return nil, err
	}
	green, err := acquireNamed(pins.Chip, pins.Green, "green")
	if err != nil {
		_ = red.Halt()
		return nil, err
	}
	blue, err := acquireNamed(pins.Chip, pins.Blue, "blue")
	if err != nil {
		_ = red.Halt()
		_ = green.Halt()
		return nil, err
	}

	var pwm [3]*pio.SliceRegisters
	divider := pio.ClockDivider(clk.SystemClockHz, clk.MicrosPerTick)
	for i := range pwm {
		slice, err := pio.MapSlice(pwmBase, i)
		if err != nil {
			closeAll(red, green, blue, pwm[:])
			return nil, fmt.Errorf("peripherals: map PWM slice %d: %w", i, err)
		}
		slice.Apply(pio.DefaultSliceConfig, divider)
		pwm[i] = slice
	}

	rxAddrs := [3]uint32{pioRXFIFOAddr(0), pioRXFIFOAddr(1), pioRXFIFOAddr(2)}
	ccAddrs := [3]uint32{pwmCCAddr(0), pwmCCAddr(1), pwmCCAddr(2)}
	mesh := &dma.Mesh{}
	for i := 0; i < 3; i++ {
		chain, err := dma.NewForwardChain(fwd[2*i], fwd[2*i+1], rxAddrs[i], ccAddrs[i], dma.TREQForPIORX(i))
		if err != nil {
			closeAll(red, green, blue, pwm[:])
			return nil, fmt.Errorf("peripherals: acquire forward chain %d: %w", i, err)
		}
		mesh.Forward[i] = chain
		mesh.Refill[i] = dma.NewRefillChannel(refill[i], pioTXFIFOAddr(i), dma.TREQForPIOTX(i))
	}

	return &ResourcePack{Red: red, Green: green, Blue: blue, Program: pio.DefaultProgram, Mesh: mesh, PWM: pwm}, nil
}

func closeAll(red, green, blue gpio.PinOut, pwm []*pio.SliceRegisters) {
	names := [3]string{"red", "green", "blue"}
	for i, l := range []gpio.PinOut{red, green, blue} {
		gpioreg.Unregister(names[i])
		_ = l.Halt()
	}
	for _, p := range pwm {
		if p != nil {
			_ = p.Close()
		}
	}
}

// acquireLineFunc does the actual gpiocdev request; overridden in tests so
// Acquire's error-wrapping and cleanup-on-partial-failure logic can be
// exercised without real hardware.
var acquireLineFunc = func(chip string, offset int) (gpio.PinOut, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, err
	}
	return &cdevPin{name: fmt.Sprintf("%s:%d", chip, offset), line: l}, nil
}

// acquireNamed acquires one line and registers it in gpioreg under name
// (e.g. "red"), so peripherals.ResourcePack.Close can look it up without
// this package having to remember a second copy of the handle.
func acquireNamed(chip string, offset int, name string) (gpio.PinOut, error) {
	p, err := acquireLineFunc(chip, offset)
	if err != nil {
		if errors.Is(err, gpiocdev.ErrBusy) {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrPeripheralBusy, chip, offset, err)
		}
		return nil, fmt.Errorf("peripherals: acquire %s line %d: %w", chip, offset, err)
	}
	if err := gpioreg.Register(name, p); err != nil {
		_ = p.Halt()
		return nil, fmt.Errorf("peripherals: register %s pin: %w", name, err)
	}
	return p, nil
}

// cdevPin adapts a gpiocdev.Line to gpio.PinOut.
type cdevPin struct {
	name string
	line *gpiocdev.Line
}

func (p *cdevPin) Name() string { return p.name }

func (p *cdevPin) Out(level bool) error {
	v := 0
	if level {
		v = 1
	}
	return p.line.SetValue(v)
}

func (p *cdevPin) Halt() error { return p.line.Close() }

// pioBase, pwmBase and the per-unit strides below are RP2040 peripheral
// base addresses, restated from the datasheet in the teacher corpus's
// host/bcm283x register-address style (baseAddr + offset).
const (
	pioBase      = 0x5020_0000
	pioFIFOTXOff = 0x010
	pioFIFORXOff = 0x020
	pioSMStride  = 0x004

	pwmBase     = 0x4005_0000
	pwmCCOff    = 0x00C // matches pio.SliceRegisters' csr/div/ctr/cc/top layout.
	pwmChStride = 0x014
)

func pioTXFIFOAddr(sm int) uint32 { return pioBase + pioFIFOTXOff + uint32(sm)*pioSMStride }
func pioRXFIFOAddr(sm int) uint32 { return pioBase + pioFIFORXOff + uint32(sm)*pioSMStride }
func pwmCCAddr(slice int) uint32  { return pwmBase + pwmCCOff + uint32(slice)*pwmChStride }
