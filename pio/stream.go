// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pio

import "time"

// WordStream is a buffer of encoded 32-bit step words for a single color
// channel, ready to be DMA'd into that channel's PIO TX FIFO.
//
// It plays the role the teacher corpus's gpiostream.BitStream plays for raw
// bit streams, adapted from bits to the 32-bit step words this driver's PIO
// program consumes: a stream is something with a Duration, so the pump and
// telemetry layers can reason about buffer cadence (spec.md scenario S6)
// without caring whether the words came from a real iterator or a test
// fixture.
type WordStream struct {
	// Words is the encoded buffer; see EncodeRed/EncodeGreen/EncodeBlue.
	Words []uint32
	// MicrosPerTick is the PIO tick grid these words were encoded against.
	MicrosPerTick int
}

// Duration returns the total hold time of this buffer: each word's delay
// (low 24 bits) plus one tick, the length of the "jmp x--" loop. The four
// other decode instructions each word costs ("out y", two "in"s, "out x")
// are not counted, so the PIO takes TickOverhead-1 ticks per word longer to
// drain the buffer than Duration reports.
func (w WordStream) Duration() time.Duration {
	var ticks uint64
	for _, word := range w.Words {
		ticks += uint64(word&delayMask) + 1
	}
	return time.Duration(ticks) * time.Duration(w.MicrosPerTick) * time.Microsecond
}
