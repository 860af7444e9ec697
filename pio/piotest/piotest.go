// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package piotest is a software model of the PIO waveform engine described
// by pio.DefaultProgram, for driving dma/dmatest fakes the way the real
// silicon would: each model advances through its buffer one word at a
// time, holding for Delay+1 ticks, and reports back out the channel value
// it would have written to its PWM compare register — without running any
// Go code on the host's real PIO block.
//
// It plays the role the teacher corpus's conn/gpio/gpiosmoketest plays for
// gpio.PinIO: an exercise of the real contract against a fake, not a mock.
package piotest

import (
	"sync"

	"go.ledwave.dev/ledwave/colorstream"
)

// StateMachine decodes one color channel's word buffer exactly as
// pio.DefaultProgram would: each 32-bit word yields one intensity byte
// (the top 8 bits) held for (low 24 bits)+1 ticks.
type StateMachine struct {
	mu      sync.Mutex
	words   []uint32
	pos     int
	history []byte // every intensity value decoded, in order, for assertions
}

// Load replaces the buffer this state machine decodes from, resetting its
// read position, as if a RefillChannel had just finished a DMA transfer
// into the TX FIFO.
func (m *StateMachine) Load(words []uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words = words
	m.pos = 0
}

// Step decodes the next word, if any, appending its intensity byte to the
// history and returning it along with the word's delay field (the hold
// lasts delay+1 ticks). The third return value is false once the buffer is
// exhausted.
func (m *StateMachine) Step() (intensity byte, delay uint32, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos >= len(m.words) {
		return 0, 0, false
	}
	w := m.words[m.pos]
	m.pos++
	intensity = byte(w >> 24)
	delay = w & 0x00FF_FFFF
	m.history = append(m.history, intensity)
	return intensity, delay, true
}

// History returns every intensity byte decoded so far, oldest first.
func (m *StateMachine) History() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.history))
	copy(out, m.history)
	return out
}

// DrainAll decodes every remaining word in the loaded buffer and returns
// the resulting color steps' intensity values, ignoring delay — useful in
// tests that only care what colors a buffer would have produced.
func (m *StateMachine) DrainAll() []byte {
	var out []byte
	for {
		b, _, ok := m.Step()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

// Engine models the three state machines the PIO block runs in lockstep,
// one per color channel, mirroring pump.Pump's [red, green, blue] channel
// ordering.
type Engine struct {
	Red, Green, Blue StateMachine
}

// LoadAll loads a red/green/blue triple of buffers, as the pump's three
// RefillChannels would after a completed transfer.
func (e *Engine) LoadAll(red, green, blue []uint32) {
	e.Red.Load(red)
	e.Green.Load(green)
	e.Blue.Load(blue)
}

// DecodeStep decodes one word from each of the three state machines and
// recombines them into the colorstream.ColorStep they originally encoded.
// The delay is taken from the red word; the green and blue delay fields are
// decoded but not compared with it.
func (e *Engine) DecodeStep() (colorstream.ColorStep, bool) {
	r, delay, ok := e.Red.Step()
	if !ok {
		return colorstream.ColorStep{}, false
	}
	g, _, _ := e.Green.Step()
	b, _, _ := e.Blue.Step()
	return colorstream.ColorStep{Color: colorstream.Color{R: r, G: g, B: b}, Delay: delay}, true
}
