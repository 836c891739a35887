/*
Package tga implements a decoder and encoder for the Truevision TGA image
format.

A TGA file is an 18-byte little-endian header, an optional identification
field, an optional color map of fixed-width entries, and pixel data stored
either raw or compressed with run-length packets. Color-mapped image types
store palette indices in the pixel data; truecolor and grayscale types
store color values directly.

The package offers two surfaces: Read returns the raw container (header,
palette and pixel buffers exactly as decoded), while Decode converts to an
image.Image and registers with the standard image package. TGA files carry
no magic header bytes so image.Decode only falls through to this format
after every other registered one.
*/
package tga

import (
	"errors"

	"github.com/mistgc/t1gars/buffer"
)

const (
	headerLen = 18

	// MaxDimension is the largest width or height the header can encode.
	MaxDimension = 65535
)

var (
	ErrNoData      = errors.New("tga: no image data")
	ErrMapType     = errors.New("tga: unsupported color map type")
	ErrImageType   = errors.New("tga: unsupported image type")
	ErrPixelFormat = errors.New("tga: unsupported pixel format")
	ErrDimensions  = errors.New("tga: invalid image dimensions")
	ErrShortInput  = errors.New("tga: not enough image data")
	ErrLongInput   = errors.New("tga: too much image data")
	ErrMapIndex    = errors.New("tga: color map index out of range")
)

// ImageType is the header's image type code.
type ImageType uint8

const (
	TypeNoData         ImageType = 0
	TypeColorMapped    ImageType = 1
	TypeTrueColor      ImageType = 2
	TypeGrayScale      ImageType = 3
	TypeRLEColorMapped ImageType = 9
	TypeRLETrueColor   ImageType = 10
	TypeRLEGrayScale   ImageType = 11
)

// RLE reports whether the pixel data is run-length encoded.
func (t ImageType) RLE() bool {
	return t == TypeRLEColorMapped || t == TypeRLETrueColor || t == TypeRLEGrayScale
}

// ColorMapped reports whether the pixel data holds palette indices.
func (t ImageType) ColorMapped() bool {
	return t == TypeColorMapped || t == TypeRLEColorMapped
}

func (t ImageType) valid() bool {
	switch t {
	case TypeColorMapped, TypeTrueColor, TypeGrayScale,
		TypeRLEColorMapped, TypeRLETrueColor, TypeRLEGrayScale:
		return true
	}
	return false
}

// PixelFormat is the storage format of one decoded pixel or palette entry.
type PixelFormat uint8

const (
	BW8 PixelFormat = iota
	BW16
	RGB555
	RGB24
	ARGB32
)

// Size returns the number of bytes holding one value of this format.
func (f PixelFormat) Size() int {
	switch f {
	case BW8:
		return 1
	case BW16, RGB555:
		return 2
	case RGB24:
		return 3
	default:
		return 4
	}
}

func (f PixelFormat) String() string {
	switch f {
	case BW8:
		return "BW8"
	case BW16:
		return "BW16"
	case RGB555:
		return "RGB555"
	case RGB24:
		return "RGB24"
	case ARGB32:
		return "ARGB32"
	default:
		return "unknown"
	}
}

// Header mirrors the raw 18-byte TGA file header. Multi-byte fields are
// little-endian on the wire.
type Header struct {
	IDLength     uint8
	MapType      uint8
	Type         ImageType
	MapFirst     uint16
	MapLength    uint16
	MapEntrySize uint8 // bits per palette entry
	XOrigin      uint16
	YOrigin      uint16
	Width        uint16
	Height       uint16
	PixelDepth   uint8
	Descriptor   uint8
}

// Descriptor bits 4 and 5 give the pixel order within the file.
const (
	descRightToLeft = 1 << 4
	descTopToBottom = 1 << 5
)

func (h *Header) validate() error {
	if h.MapType > 1 {
		return ErrMapType
	}
	if h.Type == TypeNoData {
		return ErrNoData
	}
	if !h.Type.valid() {
		return ErrImageType
	}
	if h.Width == 0 || h.Height == 0 {
		return ErrDimensions
	}
	_, err := h.PixelFormat()
	return err
}

// PixelFormat derives the storage format of the decoded image from the
// image type, pixel depth and palette entry size.
func (h *Header) PixelFormat() (PixelFormat, error) {
	switch {
	case h.Type.ColorMapped():
		if h.PixelDepth != 8 {
			return 0, ErrPixelFormat
		}
		switch h.MapEntrySize {
		case 15, 16:
			return RGB555, nil
		case 24:
			return RGB24, nil
		case 32:
			return ARGB32, nil
		}
	case h.Type == TypeTrueColor || h.Type == TypeRLETrueColor:
		switch h.PixelDepth {
		case 16:
			return RGB555, nil
		case 24:
			return RGB24, nil
		case 32:
			return ARGB32, nil
		}
	case h.Type == TypeGrayScale || h.Type == TypeRLEGrayScale:
		switch h.PixelDepth {
		case 8:
			return BW8, nil
		case 16:
			return BW16, nil
		}
	}
	return 0, ErrPixelFormat
}

// pixelSize returns the bytes per pixel as stored in the pixel data block,
// which for color-mapped types is the index width, not the entry width.
func (h *Header) pixelSize() int {
	return bitsToBytes(int(h.PixelDepth))
}

// bitsToBytes rounds a bit count up to whole bytes, so 15 and 16-bit
// entries both occupy two bytes.
func bitsToBytes(bits int) int {
	if bits == 0 {
		return 0
	}
	return (bits-1)/8 + 1
}

// ColorMap is the palette block of a color-mapped image. Pixels holds
// Count entries of EntrySize bytes each, starting at file index First.
type ColorMap struct {
	First     uint16
	Count     uint16
	EntrySize uint8 // bytes per entry
	Pixels    *buffer.Buffer
}

// Entry copies palette entry i (a file index, offset by First) into p.
func (m *ColorMap) Entry(i uint16, p []byte) error {
	if i < m.First || i-m.First >= m.Count {
		return ErrMapIndex
	}
	off := int(i-m.First) * int(m.EntrySize)
	copy(p, m.Pixels.Bytes()[off:off+int(m.EntrySize)])
	return nil
}

// Image is a decoded TGA container: the file header plus the pixel and
// palette buffers exactly as decoded. Data always holds
// Width*Height*pixelSize bytes; for color-mapped types these are palette
// indices, otherwise color values.
type Image struct {
	Header Header
	Data   *buffer.Buffer
	Map    *ColorMap
}

// Release releases the pixel buffer and, if present, the palette buffer.
func (m *Image) Release() {
	if m.Data != nil {
		m.Data.Release()
	}
	if m.Map != nil && m.Map.Pixels != nil {
		m.Map.Pixels.Release()
	}
}
