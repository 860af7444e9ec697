// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

import (
	"context"
	"errors"
	"fmt"
)

// Channel is one physical DMA channel. The production implementation
// (MappedChannel, backed by the memory-mapped register bank) and the dmatest
// fake both implement it.
type Channel interface {
	// Configure restates cb into this channel's registers. It does not start
	// the transfer.
	Configure(cb ControlBlock) error
	// Trigger starts (or retriggers) the channel from its configured control
	// block.
	Trigger() error
	// Wait blocks until the channel's current transfer completes, or ctx is
	// canceled.
	Wait(ctx context.Context) error
	// Abort stops an in-flight transfer. Safe to call on an idle channel.
	Abort() error
}

// ForwardChain is a cross-chained pair of channels copying one color's PIO
// RX FIFO words into its PWM compare register, with zero CPU involvement
// once started. Channel A is triggered; both channels are configured with the
// maximum transfer count and paced purely by the RX FIFO's DREQ.
//
// NewForwardChain does not know the channels' indices, so it leaves ChainTo
// at 0 for both A and B: no A-to-B or B-to-A hand-off is configured.
type ForwardChain struct {
	A, B Channel
}

// NewForwardChain configures and starts a forward chain for one color
// channel: rxFIFOAddr is the address of that PIO state machine's RX FIFO
// (16 bits wide once popped), ccAddr is the address of the corresponding
// PWM slice's channel-A compare register, and treq is TREQForPIORX(sm).
func NewForwardChain(a, b Channel, rxFIFOAddr, ccAddr uint32, treq TREQ) (*ForwardChain, error) {
	cbA := ControlBlock{
		ReadAddr:      rxFIFOAddr,
		WriteAddr:     ccAddr,
		TransferCount: maxTransferCount,
		DataSize:      DataSizeHalf,
		IncrRead:      false,
		IncrWrite:     false,
		Treq:          treq,
		ChainTo:       0, // left at 0 for both channels; see ForwardChain.
	}
	cbB := cbA
	if err := a.Configure(cbA); err != nil {
		return nil, fmt.Errorf("dma: configure forward channel A: %w", err)
	}
	if err := b.Configure(cbB); err != nil {
		return nil, fmt.Errorf("dma: configure forward channel B: %w", err)
	}
	if err := a.Trigger(); err != nil {
		return nil, fmt.Errorf("dma: trigger forward channel A: %w", err)
	}
	return &ForwardChain{A: a, B: b}, nil
}

// Abort tears down both channels. Safe to call more than once.
func (f *ForwardChain) Abort() error {
	errA := f.A.Abort()
	errB := f.B.Abort()
	return errors.Join(errA, errB)
}

// RefillChannel pushes one contiguous buffer of 32-bit step words into a
// PIO TX FIFO, paced by that state machine's TX DREQ. Completion of the
// transfer is the synchronization point the pump (package pump) waits on:
// it means the PIO has actually consumed the words, not merely that the
// host finished writing them.
type RefillChannel struct {
	ch         Channel
	txFIFOAddr uint32
	treq       TREQ
}

// NewRefillChannel wraps ch as the refill channel for one color, targeting
// the PIO state machine's TX FIFO at txFIFOAddr.
func NewRefillChannel(ch Channel, txFIFOAddr uint32, treq TREQ) *RefillChannel {
	return &RefillChannel{ch: ch, txFIFOAddr: txFIFOAddr, treq: treq}
}

// Start configures the channel to drain words 32-bit words starting at
// bufAddr (the physical address of a host-computed word buffer) into the PIO
// TX FIFO and triggers it. The transfer count is set to words; the caller
// must Wait for completion before reusing or overwriting the buffer.
func (r *RefillChannel) Start(bufAddr uint32, words int) error {
	if words <= 0 {
		return errors.New("dma: refill buffer must be non-empty")
	}
	cb := ControlBlock{
		ReadAddr:      bufAddr,
		WriteAddr:     r.txFIFOAddr,
		TransferCount: uint32(words),
		DataSize:      DataSizeWord,
		IncrRead:      true,
		IncrWrite:     false,
		Treq:          r.treq,
		IRQOnComplete: true,
	}
	if err := r.ch.Configure(cb); err != nil {
		return fmt.Errorf("dma: configure refill channel: %w", err)
	}
	return r.ch.Trigger()
}

// Wait blocks until the PIO has drained the most recently started buffer.
func (r *RefillChannel) Wait(ctx context.Context) error {
	return r.ch.Wait(ctx)
}

// Abort stops an in-flight refill, if any.
func (r *RefillChannel) Abort() error {
	return r.ch.Abort()
}

// Mesh is the full nine-channel topology spec.md §4.D describes: three
// ForwardChains (six channels, two per color) and three RefillChannels
// (one per color).
type Mesh struct {
	Forward [3]*ForwardChain // index 0=R, 1=G, 2=B
	Refill  [3]*RefillChannel
}

// Abort tears down every forward chain and every refill channel in the mesh.
// Nil entries are skipped.
func (m *Mesh) Abort() error {
	var err error
	for _, f := range m.Forward {
		if f != nil {
			err = errors.Join(err, f.Abort())
		}
	}
	for _, r := range m.Refill {
		if r != nil {
			err = errors.Join(err, r.Abort())
		}
	}
	return err
}
