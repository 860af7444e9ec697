// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pio

import (
	"errors"

	"go.ledwave.dev/ledwave/colorstream"
)

// delayMask keeps the low 24 bits of a step's delay; DefaultProgram's
// "out x, 24" only ever reads that many bits off the word.
const delayMask = 0x00FF_FFFF

// ErrDelayOverflow is returned by the Encode* functions when a step's delay
// doesn't fit in the 24 bits DefaultProgram allots it.
var ErrDelayOverflow = errors.New("pio: delay does not fit in 24 bits")

// EncodeRed, EncodeGreen and EncodeBlue pack one channel's intensity and the
// step's shared delay into the 32-bit word DefaultProgram expects:
// (channel_byte << 24) | (delay & 0x00FFFFFF).
//
// All three encoders of the same step carry an identical low-24-bit delay
// field by construction, since they all read step.Delay; this is the
// invariant spec.md §8 property 6 checks.
func EncodeRed(step colorstream.ColorStep) (uint32, error) {
	return encode(step.Color.R, step.Delay)
}

func EncodeGreen(step colorstream.ColorStep) (uint32, error) {
	return encode(step.Color.G, step.Delay)
}

func EncodeBlue(step colorstream.ColorStep) (uint32, error) {
	return encode(step.Color.B, step.Delay)
}

func encode(channel byte, delay uint32) (uint32, error) {
	if delay > delayMask {
		return 0, ErrDelayOverflow
	}
	return uint32(channel)<<24 | (delay & delayMask), nil
}
