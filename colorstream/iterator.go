// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package colorstream

import "errors"

// errNonPositiveTick is returned by NewIterator when microsPerTick isn't
// strictly positive.
var errNonPositiveTick = errors.New("colorstream: microsPerTick must be positive")

// ColorStep is one (color, hold duration) pair: "hold Color for Delay PIO
// ticks, then move to the next step."
//
// Delay already has the PIO decode overhead subtracted out; see Iterator.
type ColorStep struct {
	Color Color
	Delay uint32 // PIO ticks
}

// Iterator merges N streams into a lazy, infinite sequence of ColorSteps.
//
// It is not safe for concurrent use: the pump (package pump) owns exactly
// one Iterator per generation goroutine at a time.
type Iterator struct {
	streams       []StreamConfig
	microsPerTick int64
	tickOverhead  uint32

	currentTime Instant
}

// NewIterator builds an Iterator over streams, which is kept and read but
// never mutated; ownership stays with the caller.
//
// microsPerTick is the PIO tick grid (the reference firmware uses 64).
// tickOverhead is the fixed per-step PIO decode cost, in ticks, subtracted
// from every computed delay (the reference firmware uses 5, derived from the
// instruction count of pio.Program; see that package's doc comment).
func NewIterator(streams []StreamConfig, microsPerTick int, tickOverhead uint32) (*Iterator, error) {
	if len(streams) == 0 {
		return nil, ErrNoStreams
	}
	if microsPerTick <= 0 {
		return nil, errNonPositiveTick
	}
	cp := make([]StreamConfig, len(streams))
	copy(cp, streams)
	return &Iterator{
		streams:       cp,
		microsPerTick: int64(microsPerTick),
		tickOverhead:  tickOverhead,
		currentTime:   0,
	}, nil
}

// Reset rewinds the iterator to the epoch, the state it starts in.
//
// A configuration hot-swap (spec §9) resets the iterator this way so the new
// schedule begins from each stream's Offset rather than inheriting a stale
// phase.
func (it *Iterator) Reset() {
	it.currentTime = 0
}

// Next produces the next ColorStep.
//
// It never fails and never blocks; it is deterministic given the iterator's
// configuration and current position.
func (it *Iterator) Next() ColorStep {
	nextTime := it.streams[0].NextChangeAfter(it.currentTime)
	for _, s := range it.streams[1:] {
		if c := s.NextChangeAfter(it.currentTime); c < nextTime {
			nextTime = c
		}
	}

	var rSum, gSum, bSum uint32
	for _, s := range it.streams {
		c := s.ColorAt(it.currentTime)
		rSum += uint32(c.R)
		gSum += uint32(c.G)
		bSum += uint32(c.B)
	}
	color := normalize(rSum, gSum, bSum)

	spanMicros := int64(nextTime - it.currentTime)
	rawTicks := spanMicros / it.microsPerTick
	delay := saturatingSub(uint32(rawTicks), it.tickOverhead)

	it.currentTime = nextTime
	return ColorStep{Color: color, Delay: delay}
}

// normalize takes the three per-channel sums and, if a sum overflows a byte
// on any channel, rescales all three linearly so the loudest channel lands at 255,
// preserving hue. This is a constant-brightness cap, not gamma correction;
// it only activates when streams overlap.
func normalize(r, g, b uint32) Color {
	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	if max <= 255 {
		return Color{R: byte(r), G: byte(g), B: byte(b)}
	}
	return Color{
		R: byte(r * 255 / max),
		G: byte(g * 255 / max),
		B: byte(b * 255 / max),
	}
}

// saturatingSub returns v-overhead, clamped at zero instead of wrapping.
func saturatingSub(v, overhead uint32) uint32 {
	if v < overhead {
		return 0
	}
	return v - overhead
}
