/*
Package rle decodes the run-length packet stream used by the compressed TGA
image types.

Each packet starts with one identification byte: bit 7 selects the packet
kind and the low seven bits hold count-1, so a packet covers 1 to 128 pixel
units. A run-length packet (bit 7 set) is followed by a single unit which
is replicated count times; a raw packet is followed by count literal units.
A unit is one pixel's worth of bytes, so 16, 24 and 32-bit images repeat
whole pixels, never single bytes.
*/
package rle

import (
	"errors"

	"github.com/mistgc/t1gars/buffer"
)

var (
	// ErrCapacity is returned when a packet would write past the end of
	// the destination buffer.
	ErrCapacity = errors.New("rle: decoded data exceeds destination capacity")

	// ErrTruncated is returned when the input ends inside a packet.
	ErrTruncated = errors.New("rle: input ends inside a packet")

	// ErrShortData is returned when the input is exhausted before the
	// destination buffer is full.
	ErrShortData = errors.New("rle: input exhausted before destination filled")

	// ErrUnitSize is returned for a non-positive unit size.
	ErrUnitSize = errors.New("rle: invalid unit size")
)

const (
	packetRun   = 0x80
	packetCount = 0x7f
)

// Decode expands the packet stream src into dst, whose capacity must equal
// the expected decoded length exactly. It either fills dst completely and
// consumes src completely, or returns an error; on error dst holds a
// partial decode the caller should discard.
func Decode(dst *buffer.Buffer, src []byte, unitSize int) error {
	if unitSize <= 0 {
		return ErrUnitSize
	}

	var in, out int
	for in < len(src) {
		id := src[in]
		in++

		n := int(id&packetCount) + 1
		if out+n*unitSize > dst.Cap() {
			return ErrCapacity
		}

		if id&packetRun != 0 {
			if in+unitSize > len(src) {
				return ErrTruncated
			}
			if err := dst.Repeat(out, src[in:in+unitSize], n); err != nil {
				return err
			}
			in += unitSize
		} else {
			if in+n*unitSize > len(src) {
				return ErrTruncated
			}
			if err := dst.Put(out, src[in:in+n*unitSize]); err != nil {
				return err
			}
			in += n * unitSize
		}
		out += n * unitSize
	}

	if out != dst.Cap() {
		return ErrShortData
	}
	return nil
}

// MaxEncodedLen returns the worst-case packet stream length for decodedLen
// bytes of pixel data at the given unit size: every unit carried by its own
// raw packet.
func MaxEncodedLen(decodedLen, unitSize int) int {
	if unitSize <= 0 || decodedLen <= 0 {
		return 0
	}
	return decodedLen + (decodedLen+unitSize-1)/unitSize
}
