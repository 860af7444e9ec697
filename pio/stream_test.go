// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pio_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.ledwave.dev/ledwave/pio"
)

func TestWordStream_DurationSumsDelaysPlusOne(t *testing.T) {
	w := pio.WordStream{
		Words:         []uint32{10, 0, 5}, // delays (low 24 bits): 10, 0, 5
		MicrosPerTick: 64,
	}
	want := time.Duration(11+1+6) * 64 * time.Microsecond
	assert.Equal(t, want, w.Duration())
}

func TestWordStream_EmptyHasZeroDuration(t *testing.T) {
	w := pio.WordStream{MicrosPerTick: 64}
	assert.Zero(t, w.Duration())
}
