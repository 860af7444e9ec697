// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pump

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.ledwave.dev/ledwave/colorstream"
	"go.ledwave.dev/ledwave/dma"
	"go.ledwave.dev/ledwave/dma/dmatest"
	"go.ledwave.dev/ledwave/physic"
	"go.ledwave.dev/ledwave/pio"
)

// autoComplete watches a dmatest.Channel and completes its transfer shortly
// after it's triggered, simulating the PIO draining the buffer at its own
// pace without the test having to hand-synchronize every word.
func autoComplete(ctx context.Context, ch *dmatest.Channel, count *int64) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if ch.Triggered() {
			atomic.AddInt64(count, 1)
			ch.Complete()
			// Wait for the next Configure before watching for another trigger.
			for ch.Triggered() {
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Millisecond):
				}
			}
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPump_RunJoinsGeneratorAndAllThreeDMAs(t *testing.T) {
	s, err := colorstream.NewStreamConfig(colorstream.Color{R: 255}, 1000*physic.Hertz, 100, 0)
	require.NoError(t, err)
	it, err := colorstream.NewIterator([]colorstream.StreamConfig{s}, 64, 5)
	require.NoError(t, err)

	redCh := &dmatest.Channel{Name: "red"}
	greenCh := &dmatest.Channel{Name: "green"}
	blueCh := &dmatest.Channel{Name: "blue"}
	refill := [3]*dma.RefillChannel{
		dma.NewRefillChannel(redCh, 0x1000, dma.TREQForPIOTX(0)),
		dma.NewRefillChannel(greenCh, 0x1004, dma.TREQForPIOTX(1)),
		dma.NewRefillChannel(blueCh, 0x1008, dma.TREQForPIOTX(2)),
	}

	p, err := New(it, refill, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var swaps int64
	go autoComplete(ctx, redCh, &swaps)
	go autoComplete(ctx, greenCh, new(int64))
	go autoComplete(ctx, blueCh, new(int64))

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// Let a handful of buffer swaps happen; each swap requires all three
	// channels to have been triggered and completed, which requires the
	// generator goroutine to have finished encoding the back buffer too.
	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&swaps) < 3 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for buffer swaps")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	err = <-done
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, redCh.Aborted())
	require.True(t, greenCh.Aborted())
	require.True(t, blueCh.Aborted())
}

// TestGenerate_PropagatesEncodeOverflow covers a stream slow enough that its
// black span alone exceeds pio's 24-bit delay field: saturatingSub only
// clamps the low end, so generate must surface the encode error rather than
// write a zero word.
func TestGenerate_PropagatesEncodeOverflow(t *testing.T) {
	// Period = 2000s, burst = 1us: the black span dwarfs
	// 16777215 ticks * 64us/tick (~1073s).
	s, err := colorstream.NewStreamConfig(colorstream.Color{R: 255}, physic.Frequency(500), 1, 0)
	require.NoError(t, err)
	it, err := colorstream.NewIterator([]colorstream.StreamConfig{s}, 64, 5)
	require.NoError(t, err)

	redCh := &dmatest.Channel{Name: "red"}
	greenCh := &dmatest.Channel{Name: "green"}
	blueCh := &dmatest.Channel{Name: "blue"}
	refill := [3]*dma.RefillChannel{
		dma.NewRefillChannel(redCh, 0x1000, dma.TREQForPIOTX(0)),
		dma.NewRefillChannel(greenCh, 0x1004, dma.TREQForPIOTX(1)),
		dma.NewRefillChannel(blueCh, 0x1008, dma.TREQForPIOTX(2)),
	}
	p, err := New(it, refill, nil)
	require.NoError(t, err)

	err = p.generate(&p.front)
	require.ErrorIs(t, err, pio.ErrDelayOverflow)
}

// TestPump_RunReturnsEncodeErrorFromInitialFill checks Run itself surfaces
// the same failure before ever triggering a DMA transfer.
func TestPump_RunReturnsEncodeErrorFromInitialFill(t *testing.T) {
	s, err := colorstream.NewStreamConfig(colorstream.Color{R: 255}, physic.Frequency(500), 1, 0)
	require.NoError(t, err)
	it, err := colorstream.NewIterator([]colorstream.StreamConfig{s}, 64, 5)
	require.NoError(t, err)

	redCh := &dmatest.Channel{Name: "red"}
	greenCh := &dmatest.Channel{Name: "green"}
	blueCh := &dmatest.Channel{Name: "blue"}
	refill := [3]*dma.RefillChannel{
		dma.NewRefillChannel(redCh, 0x1000, dma.TREQForPIOTX(0)),
		dma.NewRefillChannel(greenCh, 0x1004, dma.TREQForPIOTX(1)),
		dma.NewRefillChannel(blueCh, 0x1008, dma.TREQForPIOTX(2)),
	}
	p, err := New(it, refill, nil)
	require.NoError(t, err)

	err = p.Run(context.Background())
	require.ErrorIs(t, err, pio.ErrDelayOverflow)
	require.True(t, redCh.Aborted())
	require.True(t, greenCh.Aborted())
	require.True(t, blueCh.Aborted())
}
