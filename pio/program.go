// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pio describes the programmable-I/O waveform engine: the PIO
// program three state machines run in lockstep, the clock divider that
// fixes the PIO tick duration, and the word encoding the DMA mesh (package
// dma) carries between the host-computed step buffers and the PIO RX FIFOs.
//
// Nothing in this package runs on the host CPU in the hot path — the actual
// decode loop executes on the PIO state machines, in hardware, and the only
// thing the host ever does is program the state machines once at startup
// and then feed them 32-bit words via DMA (package dma). This package is
// the data and the constants that describe that hardware contract, plus a
// software model of it (used by piotest) for testing the rest of the system
// without real silicon.
package pio

import "time"

// Program is the five-instruction PIO loop every state machine runs,
// expressed as data for documentation and for the software model in
// piotest. The real program is assembled once, at driver build time, into
// the PIO instruction memory; this struct is not interpreted by the Go
// runtime in production.
//
//	wait 0 irq 0        ; initial barrier; released once by the host
//	.wrap_target
//	out y, 8            ; y <- top 8 bits of the word: intensity
//	in  null, 8         ; push 8 zero bits
//	in  y, 8            ; then the intensity; 16-bit ISR auto-pushes to RX FIFO
//	out x, 24           ; x <- remaining 24 bits: tick delay
//	delay:
//	jmp x--, delay      ; hold for x+1 ticks
//	.wrap
//
// Each word produces exactly one 16-bit RX FIFO entry (0x00II, intensity
// left-aligned in the low byte) and a hold of Delay+1 PIO ticks.
type Program struct {
	// Instructions is purely descriptive; see the doc comment above for the
	// actual five-instruction body every state machine executes.
	Instructions []string
}

// DefaultProgram is the PIO program this driver configures into all three
// state machines.
var DefaultProgram = Program{
	Instructions: []string{
		"wait 0 irq 0",
		"out y, 8",
		"in null, 8",
		"in y, 8",
		"out x, 24",
		"jmp x--, 5", // jumps to itself (instruction index 5) until x reaches 0
	},
}

// TickOverhead is the fixed per-step instruction cost of DefaultProgram: the
// "out y,8", the two "in"s, the "out x,24" and one iteration of the
// "jmp x--" loop, each costing one PIO tick. Any edit to DefaultProgram
// invalidates this constant and it must be recounted by hand; the spec this
// driver implements deliberately does not define a self-calibration method.
const TickOverhead = 5

// ClockDivider computes the fixed-point PIO clock divider that makes one PIO
// tick last microsPerTick microseconds, given the system clock sysClockHz.
//
// The result is the value programmed into the state machine's clock divider
// register; it is returned as a float64 because the real register is a
// 16.8 fixed-point fraction and the driver quantizes it at program time.
func ClockDivider(sysClockHz int64, microsPerTick int) float64 {
	tickHz := float64(time.Second/time.Microsecond) / float64(microsPerTick)
	return float64(sysClockHz) / tickHz
}
