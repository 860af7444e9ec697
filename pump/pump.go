// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pump implements the double-buffered concurrency discipline that
// overlaps generation of the next buffer of color steps with DMA-driven
// consumption of the current buffer.
package pump

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"go.ledwave.dev/ledwave/colorstream"
	"go.ledwave.dev/ledwave/dma"
	"go.ledwave.dev/ledwave/pio"
	"go.ledwave.dev/ledwave/telemetry"
)

// BufferCapacity is the compile-time step count of each channel's buffer.
// The reference firmware uses 2048 words; a larger buffer amortizes
// generation overhead but increases buffer-swap latency (spec.md §3).
const BufferCapacity = 2048

// buffers is one double-buffer slot: one word buffer per color.
type buffers struct {
	red, green, blue *dma.Buffer
}

// Pump owns the iterator and the two buffer slots, and drives the
// steady-state loop described in spec.md §4.E.
type Pump struct {
	iterator *colorstream.Iterator
	refill   [3]*dma.RefillChannel // red, green, blue
	log      *telemetry.Logger

	front, back buffers
}

// New builds a Pump. refill must already be configured for the three color
// channels in [red, green, blue] order; iterator is consumed by reference
// and is not safe to share with any other Pump.
func New(iterator *colorstream.Iterator, refill [3]*dma.RefillChannel, log *telemetry.Logger) (*Pump, error) {
	front, err := allocBuffers()
	if err != nil {
		return nil, fmt.Errorf("pump: allocate front buffers: %w", err)
	}
	back, err := allocBuffers()
	if err != nil {
		return nil, fmt.Errorf("pump: allocate back buffers: %w", err)
	}
	return &Pump{iterator: iterator, refill: refill, log: log, front: front, back: back}, nil
}

func allocBuffers() (buffers, error) {
	const bufSize = BufferCapacity * 4 // 4 bytes per encoded word.
	red, err := dma.AllocBuffer(bufSize)
	if err != nil {
		return buffers{}, err
	}
	green, err := dma.AllocBuffer(bufSize)
	if err != nil {
		return buffers{}, err
	}
	blue, err := dma.AllocBuffer(bufSize)
	if err != nil {
		return buffers{}, err
	}
	return buffers{red: red, green: green, blue: blue}, nil
}

// Run fills the initial buffer, then alternates generation and DMA-paced
// transmission forever, until ctx is canceled.
//
// On cancellation, it aborts the in-flight refill transfers and returns
// ctx.Err(); the buffers are abandoned, matching spec.md §5's "cancellation
// aborts the in-flight DMAs cleanly, buffers may be abandoned".
func (p *Pump) Run(ctx context.Context) error {
	if err := p.generate(&p.front); err != nil {
		return p.abort(err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return p.abort(err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return p.generate(&p.back) })
		g.Go(func() error { return p.startAndWait(gctx, p.refill[0], p.front.red) })
		g.Go(func() error { return p.startAndWait(gctx, p.refill[1], p.front.green) })
		g.Go(func() error { return p.startAndWait(gctx, p.refill[2], p.front.blue) })

		if err := g.Wait(); err != nil {
			return p.abort(err)
		}

		p.front, p.back = p.back, p.front
		if p.log != nil {
			p.log.BufferSwapped()
		}
	}
}

func (p *Pump) startAndWait(ctx context.Context, r *dma.RefillChannel, buf *dma.Buffer) error {
	words := buf.Words()[:BufferCapacity]
	if err := r.Start(buf.PhysAddr(), len(words)); err != nil {
		return fmt.Errorf("pump: start refill: %w", err)
	}
	return r.Wait(ctx)
}

func (p *Pump) abort(cause error) error {
	for _, r := range p.refill {
		if r != nil {
			_ = r.Abort()
		}
	}
	return cause
}

// generate pulls BufferCapacity steps from the iterator and encodes each
// into the three channel-specific word buffers in b.
//
// saturatingSub only clamps a step's delay at the low end; a slow enough
// stream (or a long black span between bursts) can still overflow pio's
// 24-bit delay field, so a single bad step fails the whole buffer rather
// than silently writing a zero word.
//
// It does not yield between steps: the goroutine scheduler this module runs
// under is preemptive, and spec.md §9 notes the per-step yield only matters
// for a cooperative scheduler, which this host-side build doesn't have — see
// DESIGN.md.
func (p *Pump) generate(b *buffers) error {
	redWords := b.red.Words()
	greenWords := b.green.Words()
	blueWords := b.blue.Words()
	for i := 0; i < BufferCapacity; i++ {
		step := p.iterator.Next()
		r, err := pio.EncodeRed(step)
		if err != nil {
			return fmt.Errorf("pump: encode red step %d: %w", i, err)
		}
		g, err := pio.EncodeGreen(step)
		if err != nil {
			return fmt.Errorf("pump: encode green step %d: %w", i, err)
		}
		bl, err := pio.EncodeBlue(step)
		if err != nil {
			return fmt.Errorf("pump: encode blue step %d: %w", i, err)
		}
		redWords[i] = r
		greenWords[i] = g
		blueWords[i] = bl
	}
	return nil
}
