// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dmatest is meant to be used to test drivers using a fake DMA
// channel, following the teacher corpus's conn/gpio/gpiotest pattern: a
// plain struct the test drives directly (Complete simulates the hardware
// finishing a transfer), no mocking framework.
package dmatest

import (
	"context"
	"sync"

	"go.ledwave.dev/ledwave/dma"
)

// Channel implements dma.Channel without touching real memory. Configure
// and Trigger just record what they were asked to do; Wait blocks until the
// test (or Complete) signals the transfer finished, modeling the PIO
// consuming the buffer at its own pace.
type Channel struct {
	Name string

	mu        sync.Mutex
	cb        dma.ControlBlock
	triggered bool
	aborted   bool
	done      chan struct{}
}

// LastConfigure returns the most recent control block Configure received.
func (c *Channel) LastConfigure() dma.ControlBlock {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cb
}

// Triggered reports whether Trigger has been called since the last
// Configure.
func (c *Channel) Triggered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggered
}

// Aborted reports whether Abort has been called.
func (c *Channel) Aborted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aborted
}

// Configure implements dma.Channel.
func (c *Channel) Configure(cb dma.ControlBlock) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cb = cb
	c.triggered = false
	c.done = make(chan struct{})
	return nil
}

// Trigger implements dma.Channel.
func (c *Channel) Trigger() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggered = true
	return nil
}

// Complete signals that the simulated PIO has drained this channel's
// buffer, unblocking any pending Wait.
func (c *Channel) Complete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		select {
		case <-c.done:
		default:
			close(c.done)
		}
	}
}

// Wait implements dma.Channel.
func (c *Channel) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Abort implements dma.Channel.
func (c *Channel) Abort() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aborted = true
	if c.done != nil {
		select {
		case <-c.done:
		default:
			close(c.done)
		}
	}
	return nil
}

var _ dma.Channel = (*Channel)(nil)
