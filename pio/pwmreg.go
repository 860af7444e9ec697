// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sliceRegs mirrors one RP2040 PWM slice's register block: CSR (control and
// status), DIV (clock divider), CTR (counter, unused here), CC (compare,
// written exclusively by the forward DMA chain once running) and TOP
// (counter ceiling).
type sliceRegs struct {
	csr uint32
	div uint32
	ctr uint32
	cc  uint32
	top uint32
}

const sliceRegsSize = 20 // 5 uint32 registers.

// SliceRegisters is a memory-mapped handle to one PWM slice's register
// block, used once at startup to apply SliceConfig before the forward DMA
// chain (package dma) takes over writing CC every tick.
type SliceRegisters struct {
	mem  []byte
	regs *sliceRegs
}

// MapSlice maps the register block for PWM slice n out of the PWM
// peripheral's base physical address.
func MapSlice(pwmBase uint64, n int) (*SliceRegisters, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("pio: open /dev/mem: %w", err)
	}
	defer f.Close()
	physBase := pwmBase + uint64(n)*pwmChStride
	mem, err := unix.Mmap(int(f.Fd()), int64(physBase), sliceRegsSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("pio: map PWM slice %d at %#x: %w", n, physBase, err)
	}
	return &SliceRegisters{mem: mem, regs: (*sliceRegs)(unsafe.Pointer(&mem[0]))}, nil
}

// Apply programs divider, top and the enable bit from cfg, leaving CC at
// zero for the forward DMA chain to start writing once triggered.
func (s *SliceRegisters) Apply(cfg SliceConfig, divider float64) {
	s.regs.div = uint32(divider * 16) // fixed point with 4 fractional bits.
	s.regs.top = uint32(cfg.Top)
	w := uint32(0)
	if cfg.Enable {
		w |= uint32(csrEnable)
	}
	s.regs.csr = w
}

// Close unmaps the register block.
func (s *SliceRegisters) Close() error {
	return unix.Munmap(s.mem)
}

const (
	pwmChStride = 0x14 // bytes between consecutive PWM slices' register blocks.
)
