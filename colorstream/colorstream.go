// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package colorstream implements the pure, CPU-only phase math and the
// lazy step planner that reconstructs a superposition of periodic color
// bursts as a piecewise-constant waveform.
//
// It has no dependency on any hardware: it only ever computes, given an
// instant, what color a stream contributes and when that contribution next
// changes. The PIO waveform engine (package pio) and the pump (package
// pump) consume its output; they never reach back into it.
package colorstream

import (
	"errors"
	"math"

	"go.ledwave.dev/ledwave/physic"
)

// ErrBurstExceedsPeriod is returned by NewStreamConfig when BurstDuration is
// longer than the stream's period. Fatal at construction time; the source
// stream's NextChangeAfter has no valid definition for bursts that overrun
// the next cycle.
var ErrBurstExceedsPeriod = errors.New("colorstream: burst duration exceeds period")

// ErrNoStreams is returned by NewIterator when given an empty stream list.
// Without at least one stream, NextChangeAfter has no defined minimum.
var ErrNoStreams = errors.New("colorstream: stream list is empty")

// Instant is an absolute point in time, in microseconds, relative to some
// arbitrary but fixed epoch (normally "when the pump started").
type Instant int64

// NegativeInfinity represents "before time began": the instant that precedes
// every real Instant a stream will ever be evaluated at. NextChangeAfter
// treats it as "no prior instant" and returns Offset. Iterator does not use
// it: an Iterator starts at instant 0 (see NewIterator).
const NegativeInfinity Instant = math.MinInt64

// Black is the zero color: all three channels off.
var Black = Color{}

// Color is an immutable RGB triple of 8-bit channel intensities.
type Color struct {
	R, G, B byte
}

// StreamConfig is one periodic color burst.
//
// It contributes Color during the half-open interval
// [Offset+k*Period, Offset+k*Period+BurstDuration) for every non-negative
// integer k, Black everywhere else, including everywhere strictly before
// Offset.
type StreamConfig struct {
	Color         Color
	Freq          physic.Frequency
	BurstDuration Instant // microseconds
	Offset        Instant // microseconds
}

// NewStreamConfig validates and returns a StreamConfig.
//
// Freq must be strictly positive and BurstDuration must not exceed the
// resulting period; violating either is a configuration error, fatal at
// construction.
func NewStreamConfig(color Color, freq physic.Frequency, burstDuration, offset Instant) (StreamConfig, error) {
	if freq <= 0 {
		return StreamConfig{}, errors.New("colorstream: frequency must be positive")
	}
	period := periodOf(freq)
	if burstDuration > period {
		return StreamConfig{}, ErrBurstExceedsPeriod
	}
	if burstDuration < 0 || offset < 0 {
		return StreamConfig{}, errors.New("colorstream: burst duration and offset must be non-negative")
	}
	return StreamConfig{Color: color, Freq: freq, BurstDuration: burstDuration, Offset: offset}, nil
}

// periodOf floor-converts one cycle of freq to microseconds.
func periodOf(freq physic.Frequency) Instant {
	return Instant(freq.Period().Microseconds())
}

// Period returns this stream's period in microseconds, floor-converted.
func (s StreamConfig) Period() Instant {
	return periodOf(s.Freq)
}

// ColorAt returns the color this stream contributes at instant t.
func (s StreamConfig) ColorAt(t Instant) Color {
	if t < s.Offset {
		return Black
	}
	period := s.Period()
	phase := (t - s.Offset) % period
	if phase < s.BurstDuration {
		return s.Color
	}
	return Black
}

// NextChangeAfter returns the next instant, strictly after t (or at Offset
// if t is NegativeInfinity or precedes Offset), at which ColorAt changes
// value.
//
// ColorAt and NextChangeAfter are built to agree: ColorAt(NextChangeAfter(t))
// yields the new color, never the old one. The exception is a stream whose
// BurstDuration is 0 or equals its period: its color is constant from Offset
// on, and NextChangeAfter then returns the next period boundary.
func (s StreamConfig) NextChangeAfter(t Instant) Instant {
	if t == NegativeInfinity || t < s.Offset {
		return s.Offset
	}
	period := s.Period()
	phase := (t - s.Offset) % period
	if phase < s.BurstDuration {
		return t + (s.BurstDuration - phase)
	}
	return t + (period - phase)
}
