// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// pageSize is the allocation granularity DMA-visible memory must be rounded
// to; allocating less than this wastes the remainder of the page anyway.
const pageSize = 4096

// Buffer is a page of memory shared between the CPU and the DMA engine:
// the CPU writes encoded step words into it, and a RefillChannel reads it
// by physical address.
//
// The teacher corpus's host/pmem hand-rolls the mmap/munmap/mlock calls
// directly against syscall; this module instead goes through
// golang.org/x/sys/unix, the ecosystem-standard wrapper the rest of this
// corpus reaches for raw syscalls through (see DESIGN.md). The physical
// address resolution itself (physAddrOf, in physaddr.go) is adapted
// directly from host/pmem's pagemap walk.
type Buffer struct {
	mem      []byte
	physAddr uint32
}

// AllocBuffer maps size bytes (rounded up to a page) of memory suitable for
// DMA, locked so it's never paged out from under a transfer in flight, and
// resolves the physical address the DMA engine must be told to read from
// or write to by walking /proc/self/pagemap (physAddrOf).
func AllocBuffer(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("dma: invalid buffer size %d", size)
	}
	rounded := (size + pageSize - 1) &^ (pageSize - 1)
	mem, err := unix.Mmap(-1, 0, rounded, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("dma: mmap buffer: %w", err)
	}
	if err := unix.Mlock(mem); err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("dma: mlock buffer: %w", err)
	}
	phys, err := physAddrOf(uintptr(unsafe.Pointer(&mem[0])))
	if err != nil {
		_ = unix.Munlock(mem)
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("dma: resolve physical address: %w", err)
	}
	return &Buffer{mem: mem, physAddr: phys}, nil
}

// Words returns the buffer reinterpreted as a slice of uint32, little-endian
// native layout, for the pump to encode steps directly into.
func (b *Buffer) Words() []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b.mem[0])), len(b.mem)/4)
}

// PhysAddr is the bus address to hand to a RefillChannel.
func (b *Buffer) PhysAddr() uint32 {
	return b.physAddr
}

// Close unmaps and unlocks the buffer.
func (b *Buffer) Close() error {
	if err := unix.Munlock(b.mem); err != nil {
		return fmt.Errorf("dma: munlock buffer: %w", err)
	}
	if err := unix.Munmap(b.mem); err != nil {
		return fmt.Errorf("dma: munmap buffer: %w", err)
	}
	return nil
}

// mapRegisters mmaps the DMA controller's register bank out of physical
// memory for direct, CPU-side configuration of control blocks (Configure,
// Trigger, Abort on the real Channel implementation). It is not exercised
// by dmatest, which never touches real memory.
func mapRegisters(physBase uint64, size int) ([]byte, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("dma: open /dev/mem: %w", err)
	}
	defer f.Close()
	mem, err := unix.Mmap(int(f.Fd()), int64(physBase), size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("dma: mmap registers at %#x: %w", physBase, err)
	}
	return mem, nil
}
