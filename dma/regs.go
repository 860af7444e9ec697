// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dma configures the chain topology of the host's DMA engine: the
// six self-retriggering channels that forward PIO RX FIFO words into PWM
// compare registers with zero CPU involvement, and the three channels that
// refill the PIO TX FIFOs from the pump's double-buffered step data.
package dma

// ctrl lays out one DMA channel's CTRL_TRIG register, in the bitfield
// constant style the teacher corpus's host/bcm283x/dma.go uses for the
// Broadcom SoC's DMA controller (dmaTransferInfo), here restated for the
// RP2040 DMA peripheral this driver actually targets.
type ctrl uint32

const (
	ctrlEnable       ctrl = 1 << 0 // EN
	ctrlHighPriority ctrl = 1 << 1 // HIGH_PRIORITY
	// 3:2 DATA_SIZE: 0=byte, 1=halfword, 2=word.
	dataSizeShift       = 2
	ctrlIncrRead   ctrl = 1 << 4 // INCR_READ
	ctrlIncrWrite  ctrl = 1 << 5 // INCR_WRITE
	// 10:6 RING_SIZE / RING_SEL omitted: this driver never rings.
	// 20:15 TREQ_SEL: the DREQ pacing this channel's transfers; 0x3f means
	// "unpaced, go as fast as possible" and is never used here, since every
	// channel in this mesh is paced off a PIO FIFO.
	treqSelShift          = 15
	treqUnpaced       uint32 = 0x3f
	chainToShift          = 21 // CHAIN_TO: channel index this DMA hands off to on completion.
	ctrlIRQQuiet      ctrl = 1 << 27
	ctrlBusy          ctrl = 1 << 24
	ctrlWriteError    ctrl = 1 << 29
	ctrlReadError     ctrl = 1 << 30
	ctrlAHBError      ctrl = 1 << 31
)

// DataSize is the per-transfer width a channel moves.
type DataSize uint32

const (
	DataSizeByte DataSize = 0
	DataSizeHalf DataSize = 1 // used by the forward path: PIO RX -> PWM CC is 16 bits.
	DataSizeWord DataSize = 2 // used by the refill path: buffer -> PIO TX FIFO is 32 bits.
)

// TREQ identifies the peripheral pacing signal a channel waits for before
// each transfer, mirroring the teacher corpus's dmaTransferInfo PERMAP
// enumeration (fire, pcmTX, pwm, ...), restricted to the two sources this
// driver ever uses.
type TREQ uint32

// TREQForPIORX and TREQForPIOTX compute the DREQ index for a given PIO state
// machine's RX and TX FIFOs respectively. The numbering matches the
// RP2040's DREQ table, where PIO0's eight FIFOs (4 SMs x RX/TX) occupy a
// contiguous block.
func TREQForPIORX(sm int) TREQ { return TREQ(4 + sm) }
func TREQForPIOTX(sm int) TREQ { return TREQ(0 + sm) }

// ControlBlock is the software image of one DMA channel's configuration: a
// read address, a write address, a transfer count, and the control word
// above. It is restated into the real memory-mapped registers by Channel.
type ControlBlock struct {
	ReadAddr      uint32
	WriteAddr     uint32
	TransferCount uint32
	DataSize      DataSize
	IncrRead      bool
	IncrWrite     bool
	Treq          TREQ
	ChainTo       uint8 // channel index to trigger on completion.
	IRQOnComplete bool
}

// ctrlWord packs a ControlBlock's flags into the CTRL_TRIG bit layout.
func (cb ControlBlock) ctrlWord() uint32 {
	w := uint32(ctrlEnable)
	w |= uint32(cb.DataSize) << dataSizeShift
	if cb.IncrRead {
		w |= uint32(ctrlIncrRead)
	}
	if cb.IncrWrite {
		w |= uint32(ctrlIncrWrite)
	}
	w |= uint32(cb.Treq) << treqSelShift
	w |= uint32(cb.ChainTo) << chainToShift
	if !cb.IRQOnComplete {
		w |= uint32(ctrlIRQQuiet)
	}
	return w
}

// maxTransferCount is what spec.md §4.D calls "effectively infinite": the
// forward chains configure their transfer count to this ceiling so that, in
// practice, a channel never exhausts its count on its own; the A/B
// cross-chain is an operational safety net, not the primary mechanism.
const maxTransferCount = 0xFFFFFFFF
