// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpio defines the minimal GPIO line interface this driver needs:
// just enough to acquire, name and release a line, and drive it to a fixed
// level before the PIO/DMA engine takes over.
//
// It is trimmed down from the teacher corpus's conn/gpio, which defines
// the full PinIn/PinOut/PinIO surface (edge-triggered reads, pull
// resistors, software PWM) this driver never exercises: every line it owns
// is write-only and is handed off to hardware (the PIO block) immediately
// after acquisition. See DESIGN.md for the rest of that surface's
// disposition.
package gpio

// Pin is the common base every GPIO line this driver acquires implements:
// a name for diagnostics and a way to release it back to the kernel.
type Pin interface {
	// Name returns a human-readable identifier, e.g. "gpiochip0:2".
	Name() string
	// Halt releases the line. Safe to call on an already-released Pin.
	Halt() error
}

// PinOut is a Pin that can be driven to a fixed output level.
type PinOut interface {
	Pin
	// Out sets the line high (true) or low (false).
	Out(level bool) error
}
