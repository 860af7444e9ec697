// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ledwave.dev/ledwave/dma"
	"go.ledwave.dev/ledwave/dma/dmatest"
)

func TestNewForwardChain_ConfiguresAndTriggersChannelA(t *testing.T) {
	a := &dmatest.Channel{Name: "A"}
	b := &dmatest.Channel{Name: "B"}
	chain, err := dma.NewForwardChain(a, b, 0x5020_0004, 0x4005_0014, dma.TREQForPIORX(0))
	require.NoError(t, err)
	require.NotNil(t, chain)

	assert.True(t, a.Triggered())
	assert.Equal(t, dma.DataSizeHalf, a.LastConfigure().DataSize)
	assert.Equal(t, uint32(0x5020_0004), a.LastConfigure().ReadAddr)
	assert.Equal(t, uint32(0x4005_0014), a.LastConfigure().WriteAddr)
	assert.False(t, a.LastConfigure().IncrRead)
	assert.False(t, a.LastConfigure().IncrWrite)

	require.NoError(t, chain.Abort())
	assert.True(t, a.Aborted())
	assert.True(t, b.Aborted())
}

func TestRefillChannel_StartConfiguresWordTransfer(t *testing.T) {
	ch := &dmatest.Channel{Name: "refill-red"}
	r := dma.NewRefillChannel(ch, 0x5020_0010, dma.TREQForPIOTX(0))

	require.NoError(t, r.Start(0x2000_1000, 2048))
	assert.True(t, ch.Triggered())
	cb := ch.LastConfigure()
	assert.Equal(t, dma.DataSizeWord, cb.DataSize)
	assert.True(t, cb.IncrRead)
	assert.False(t, cb.IncrWrite)
	assert.Equal(t, uint32(2048), cb.TransferCount)
	assert.Equal(t, uint32(0x2000_1000), cb.ReadAddr)
}

func TestRefillChannel_RejectsEmptyBuffer(t *testing.T) {
	ch := &dmatest.Channel{Name: "refill-green"}
	r := dma.NewRefillChannel(ch, 0x5020_0010, dma.TREQForPIOTX(1))
	err := r.Start(0x2000_2000, 0)
	assert.Error(t, err)
}

func TestRefillChannel_WaitUnblocksOnComplete(t *testing.T) {
	ch := &dmatest.Channel{Name: "refill-blue"}
	r := dma.NewRefillChannel(ch, 0x5020_0010, dma.TREQForPIOTX(2))
	require.NoError(t, r.Start(0x2000_3000, 16))

	done := make(chan error, 1)
	go func() { done <- r.Wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Wait returned before Complete was signaled")
	case <-time.After(20 * time.Millisecond):
	}

	ch.Complete()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after Complete")
	}
}

func TestMesh_AbortTearsDownEverything(t *testing.T) {
	a, b := &dmatest.Channel{}, &dmatest.Channel{}
	fwd := &dma.ForwardChain{A: a, B: b}
	m := &dma.Mesh{Forward: [3]*dma.ForwardChain{fwd}}
	require.NoError(t, m.Abort())
	assert.True(t, a.Aborted())
	assert.True(t, b.Aborted())
}
