// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package colorstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"go.ledwave.dev/ledwave/physic"
)

func mustStream(t *testing.T, color Color, hz int, burstUs, offsetUs int64) StreamConfig {
	t.Helper()
	s, err := NewStreamConfig(color, physic.Frequency(hz)*physic.Hertz, Instant(burstUs), Instant(offsetUs))
	require.NoError(t, err)
	return s
}

func TestNewStreamConfig_RejectsBurstLongerThanPeriod(t *testing.T) {
	_, err := NewStreamConfig(Color{R: 1}, 100*physic.Hertz, 20000, 0)
	assert.ErrorIs(t, err, ErrBurstExceedsPeriod)
}

func TestNewStreamConfig_AcceptsBurstEqualToPeriod(t *testing.T) {
	// S5: burst == period is accepted, not rejected.
	s, err := NewStreamConfig(Color{R: 10, G: 10, B: 10}, 1*physic.Hertz, 1000000, 0)
	require.NoError(t, err)
	assert.Equal(t, Instant(1000000), s.Period())
}

func TestColorAt_Alignment(t *testing.T) {
	s := mustStream(t, Color{R: 255}, 100, 1000, 0)
	period := s.Period()
	for k := Instant(0); k < 5; k++ {
		start := k * period
		assert.Equal(t, s.Color, s.ColorAt(start), "k=%d start", k)
		assert.Equal(t, Black, s.ColorAt(start+s.BurstDuration), "k=%d end", k)
	}
}

func TestColorAt_BeforeOffsetIsBlack(t *testing.T) {
	s := mustStream(t, Color{R: 128, G: 128, B: 128}, 1, 100000, 500000)
	assert.Equal(t, Black, s.ColorAt(0))
	assert.Equal(t, Black, s.ColorAt(499999))
	assert.Equal(t, s.Color, s.ColorAt(500000))
}

// TestChangeTimeFixpoint is spec.md §8 property 2: the returned time is
// always an actual edge, and ColorAt never reports the old color there.
func TestChangeTimeFixpoint(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hz := rapid.IntRange(1, 1000).Draw(rt, "hz")
		burst := rapid.Int64Range(1, 1000000/int64(hz)).Draw(rt, "burst")
		offset := rapid.Int64Range(0, 1000000).Draw(rt, "offset")
		s, err := NewStreamConfig(Color{R: 1, G: 2, B: 3}, physic.Frequency(hz)*physic.Hertz, Instant(burst), Instant(offset))
		require.NoError(rt, err)

		t0 := Instant(rapid.Int64Range(-1000000, 2000000).Draw(rt, "t0"))
		next := s.NextChangeAfter(t0)
		if Instant(burst) == s.Period() && t0 >= s.Offset {
			// A burst as long as the period is solid color (S5): the returned
			// period boundary keeps the same color.
			assert.Equal(rt, s.Color, s.ColorAt(next))
			return
		}
		assert.NotEqual(rt, s.ColorAt(t0), s.ColorAt(next))
	})
}

// TestSingleStreamConstantBetweenEdges is the second half of property 2.
func TestSingleStreamConstantBetweenEdges(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hz := rapid.IntRange(1, 1000).Draw(rt, "hz")
		burst := rapid.Int64Range(1, 1000000/int64(hz)).Draw(rt, "burst")
		s, err := NewStreamConfig(Color{R: 9}, physic.Frequency(hz)*physic.Hertz, Instant(burst), 0)
		require.NoError(rt, err)

		t0 := Instant(rapid.Int64Range(0, 2000000).Draw(rt, "t0"))
		next := s.NextChangeAfter(t0)
		mid := t0 + (next-t0)/2
		if mid < next {
			assert.Equal(rt, s.ColorAt(t0), s.ColorAt(mid))
		}
	})
}
