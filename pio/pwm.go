// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pio

// SliceConfig is the configuration applied to one RP2040 PWM slice so that
// its A compare register, driven by the forward DMA chain (package dma),
// produces an 8-bit effective resolution analog output.
//
// top=254 with a compare register range of [0, 255] gives exactly the 256
// distinguishable duty cycles an 8-bit intensity needs; enable must be set
// before the forward DMA chain starts writing, and must never be cleared by
// the CPU again once the engine is running (spec.md §5: the PWM compare
// registers are written exclusively by the forward DMA channels after
// startup).
type SliceConfig struct {
	Top    uint16 // compare register ceiling; fixed at 254.
	Enable bool
}

// DefaultSliceConfig is the configuration every one of the three PWM slices
// (R, G, B) is programmed with.
var DefaultSliceConfig = SliceConfig{Top: 254, Enable: true}

// csrEnable, csrPHCorrect, csrDivModeMask and the rest mirror the bitfields of the
// RP2040 PWM slice's CSR register, in the bitfield-constant style the
// teacher corpus uses for the Broadcom SoC's PWM control register
// (host/bcm283x/pwm.go's pwenN/modeN/msenN constants): named bits over a
// typed word, rather than a packed bitfield struct.
type csr uint32

const (
	csrEnable         csr = 1 << 0 // EN: enables the slice's counter.
	csrPHCorrect      csr = 1 << 1 // PH_CORRECT: phase-correct (triangle) mode; unused here.
	csrAInvert        csr = 1 << 2 // A_INV: invert channel A output.
	csrBInvert        csr = 1 << 3 // B_INV: invert channel B output.
	csrDivModeMask    csr = 0x3 << 4
	csrPHAdvance      csr = 1 << 6 // PH_ADV: advance the phase by one count on next cycle.
	csrPHRetard       csr = 1 << 7 // PH_RET: retard the phase by one count on next cycle.
)

// ccRegister lays out one PWM slice's compare-counter register: the low 16
// bits are channel A's compare value, which the forward DMA chain writes on
// every PIO RX FIFO word; the high 16 bits (channel B) are unused by this
// driver, since every pin here is wired to its slice's A output.
type ccRegister uint32

const ccAMask ccRegister = 0x0000FFFF
