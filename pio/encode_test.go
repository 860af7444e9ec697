// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ledwave.dev/ledwave/colorstream"
	"go.ledwave.dev/ledwave/pio"
)

func TestEncode_PacksChannelAndDelay(t *testing.T) {
	step := colorstream.ColorStep{Color: colorstream.Color{R: 0x12, G: 0x34, B: 0x56}, Delay: 0x00ABCDEF}

	r, err := pio.EncodeRed(step)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12ABCDEF), r)

	g, err := pio.EncodeGreen(step)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x34ABCDEF), g)

	b, err := pio.EncodeBlue(step)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x56ABCDEF), b)
}

func TestEncode_RejectsDelayOverflowingTwentyFourBits(t *testing.T) {
	step := colorstream.ColorStep{Color: colorstream.Color{R: 0xFF}, Delay: 0x0100_0000}
	_, err := pio.EncodeRed(step)
	require.ErrorIs(t, err, pio.ErrDelayOverflow)
}

func TestEncode_AllThreeChannelsShareTheSameDelayField(t *testing.T) {
	step := colorstream.ColorStep{Color: colorstream.Color{R: 1, G: 2, B: 3}, Delay: 1234}
	r, err := pio.EncodeRed(step)
	require.NoError(t, err)
	g, err := pio.EncodeGreen(step)
	require.NoError(t, err)
	b, err := pio.EncodeBlue(step)
	require.NoError(t, err)

	const delayMask = 0x00FF_FFFF
	assert.Equal(t, r&delayMask, g&delayMask)
	assert.Equal(t, g&delayMask, b&delayMask)
	assert.EqualValues(t, 1234, r&delayMask)
}
