/*
Package buffer provides the fixed-capacity byte buffers backing decoded TGA
pixel and palette data.

A Buffer owns its memory exclusively: it is created by Alloc at an exact
capacity, never grows, and is handed back with Release. Alloc zero-fills,
so a buffer that was only partially written reads as zeroes rather than
garbage. Every write is bounds-checked against the capacity; a write that
would end past it fails without touching the buffer.
*/
package buffer

import (
	"errors"
	"fmt"
)

// MaxCap bounds a single allocation to the largest pixel payload a TGA
// header can describe: 65535 by 65535 pixels at 4 bytes each.
const MaxCap = 65535 * 65535 * 4

var (
	// ErrAllocation is returned by Alloc for a capacity no valid image
	// can require.
	ErrAllocation = errors.New("buffer: allocation refused")

	// ErrRange is returned by a write that would end past the capacity.
	ErrRange = errors.New("buffer: write out of range")

	// ErrReleased is returned when using a buffer after Release.
	ErrReleased = errors.New("buffer: buffer released")
)

// Buffer is a fixed-capacity byte region. The zero value is released.
type Buffer struct {
	p []byte
}

// Alloc reserves exactly capacity bytes, zero-filled.
func Alloc(capacity int) (*Buffer, error) {
	if capacity < 0 || capacity > MaxCap {
		return nil, fmt.Errorf("%w: %d bytes", ErrAllocation, capacity)
	}
	return &Buffer{p: make([]byte, capacity)}, nil
}

// Cap returns the capacity the buffer was allocated with, or zero after
// Release.
func (b *Buffer) Cap() int {
	return len(b.p)
}

// Bytes returns the buffer contents. Callers must treat the returned slice
// as read-only and must not retain it past Release.
func (b *Buffer) Bytes() []byte {
	return b.p
}

// Put copies p into the buffer starting at off.
func (b *Buffer) Put(off int, p []byte) error {
	if b.p == nil && len(p) > 0 {
		return ErrReleased
	}
	if off < 0 || off+len(p) > len(b.p) {
		return fmt.Errorf("%w: %d bytes at offset %d, capacity %d", ErrRange, len(p), off, len(b.p))
	}
	copy(b.p[off:], p)
	return nil
}

// Repeat writes count copies of unit into the buffer starting at off.
func (b *Buffer) Repeat(off int, unit []byte, count int) error {
	if b.p == nil && count > 0 && len(unit) > 0 {
		return ErrReleased
	}
	if off < 0 || count < 0 || off+count*len(unit) > len(b.p) {
		return fmt.Errorf("%w: %d bytes at offset %d, capacity %d", ErrRange, count*len(unit), off, len(b.p))
	}
	for i := 0; i < count; i++ {
		copy(b.p[off+i*len(unit):], unit)
	}
	return nil
}

// Release returns the memory to the runtime. It is safe to call more than
// once; subsequent writes fail with ErrReleased.
func (b *Buffer) Release() {
	b.p = nil
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool {
	return b.p == nil
}
