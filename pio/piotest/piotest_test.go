// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package piotest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ledwave.dev/ledwave/colorstream"
	"go.ledwave.dev/ledwave/pio"
	"go.ledwave.dev/ledwave/pio/piotest"
)

func TestEngine_DecodeStepRoundTripsEncodedWords(t *testing.T) {
	steps := []colorstream.ColorStep{
		{Color: colorstream.Color{R: 255, G: 0, B: 10}, Delay: 135},
		{Color: colorstream.Color{R: 0, G: 64, B: 10}, Delay: 20},
	}
	var red, green, blue []uint32
	for _, s := range steps {
		r, err := pio.EncodeRed(s)
		require.NoError(t, err)
		g, err := pio.EncodeGreen(s)
		require.NoError(t, err)
		b, err := pio.EncodeBlue(s)
		require.NoError(t, err)
		red = append(red, r)
		green = append(green, g)
		blue = append(blue, b)
	}

	var e piotest.Engine
	e.LoadAll(red, green, blue)

	for _, want := range steps {
		got, ok := e.DecodeStep()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := e.DecodeStep()
	assert.False(t, ok)
}

func TestStateMachine_HistoryAccumulatesAcrossSteps(t *testing.T) {
	var m piotest.StateMachine
	m.Load([]uint32{0xFF000000, 0x80000000, 0x00000000})
	got := m.DrainAll()
	assert.Equal(t, []byte{0xFF, 0x80, 0x00}, got)
	assert.Equal(t, []byte{0xFF, 0x80, 0x00}, m.History())
}
