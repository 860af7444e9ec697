// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpioreg is a process-wide registry of the gpio.Pin values this
// driver currently owns, adapted from the teacher corpus's
// conn/gpio/gpioreg: that package indexes every pin a whole SBC exposes,
// by name, number and board-silkscreen alias, for an interactive registry
// a user picks pins out of at runtime. This driver only ever owns the
// three pins it was told to acquire, so the alias table and natural-sort
// ordering conn/gpio/gpioreg carries are dropped; what's kept is the core
// contract: Register fails loud on a name collision, ByName/Unregister
// let peripherals.ResourcePack.Close release exactly what it acquired.
package gpioreg

import (
	"fmt"
	"sort"
	"sync"

	"go.ledwave.dev/ledwave/gpio"
)

var (
	mu     sync.Mutex
	byName = map[string]gpio.Pin{}
)

// Register records p under name. Registering the same name twice is an
// error: this driver never intentionally acquires the same line twice.
func Register(name string, p gpio.Pin) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := byName[name]; ok {
		return fmt.Errorf("gpioreg: %q is already registered", name)
	}
	byName[name] = p
	return nil
}

// Unregister removes name from the registry, if present. It does not Halt
// the pin; the caller does that first.
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(byName, name)
}

// ByName returns the pin registered under name, or nil if none is.
func ByName(name string) gpio.Pin {
	mu.Lock()
	defer mu.Unlock()
	return byName[name]
}

// All returns every registered pin, ordered by name.
func All() []gpio.Pin {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]gpio.Pin, len(names))
	for i, n := range names {
		out[i] = byName[n]
	}
	return out
}
