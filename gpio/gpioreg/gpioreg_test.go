// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpioreg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ledwave.dev/ledwave/gpio/gpioreg"
	"go.ledwave.dev/ledwave/gpio/gpiotest"
)

func TestRegister_RejectsDuplicateName(t *testing.T) {
	t.Cleanup(func() { gpioreg.Unregister("dup") })
	require.NoError(t, gpioreg.Register("dup", &gpiotest.Pin{PinName: "dup"}))
	err := gpioreg.Register("dup", &gpiotest.Pin{PinName: "dup"})
	assert.Error(t, err)
}

func TestByName_ReturnsRegisteredPin(t *testing.T) {
	t.Cleanup(func() { gpioreg.Unregister("red") })
	p := &gpiotest.Pin{PinName: "red"}
	require.NoError(t, gpioreg.Register("red", p))
	assert.Same(t, p, gpioreg.ByName("red"))
}

func TestByName_UnknownReturnsNil(t *testing.T) {
	assert.Nil(t, gpioreg.ByName("does-not-exist"))
}

func TestUnregister_RemovesThenAllowsReRegistration(t *testing.T) {
	p := &gpiotest.Pin{PinName: "blue"}
	require.NoError(t, gpioreg.Register("blue", p))
	gpioreg.Unregister("blue")
	assert.Nil(t, gpioreg.ByName("blue"))
	require.NoError(t, gpioreg.Register("blue", p))
	gpioreg.Unregister("blue")
}

func TestAll_IsSortedByName(t *testing.T) {
	t.Cleanup(func() {
		gpioreg.Unregister("z-pin")
		gpioreg.Unregister("a-pin")
	})
	require.NoError(t, gpioreg.Register("z-pin", &gpiotest.Pin{PinName: "z-pin"}))
	require.NoError(t, gpioreg.Register("a-pin", &gpiotest.Pin{PinName: "a-pin"}))
	all := gpioreg.All()
	var names []string
	for _, p := range all {
		names = append(names, p.Name())
	}
	require.Contains(t, names, "a-pin")
	require.Contains(t, names, "z-pin")
	aIdx, zIdx := -1, -1
	for i, n := range names {
		if n == "a-pin" {
			aIdx = i
		}
		if n == "z-pin" {
			zIdx = i
		}
	}
	assert.Less(t, aIdx, zIdx)
}
