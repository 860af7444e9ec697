// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpiotest is meant to be used to test drivers using a fake
// gpio.PinOut, following the teacher corpus's conn/gpio/gpiotest pattern:
// a plain struct whose state a test mutates and inspects directly, no
// mocking framework.
package gpiotest

import "sync"

// Pin implements gpio.PinOut without touching real hardware.
type Pin struct {
	PinName string // immutable

	mu     sync.Mutex
	level  bool
	halted bool
}

// Name implements gpio.Pin.
func (p *Pin) Name() string { return p.PinName }

// Out implements gpio.PinOut.
func (p *Pin) Out(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	return nil
}

// Level returns the level most recently passed to Out.
func (p *Pin) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Halt implements gpio.Pin.
func (p *Pin) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.halted = true
	return nil
}

// Halted reports whether Halt has been called.
func (p *Pin) Halted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.halted
}
