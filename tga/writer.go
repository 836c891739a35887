package tga

import (
	"bufio"
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

// Descriptor values written by the encoder: top-left origin, with eight
// attribute bits per pixel for 32-bit output.
const (
	descOut      = descTopToBottom
	descOutAlpha = descTopToBottom | 8
)

func writeHeader(w io.Writer, h Header) error {
	return binary.Write(w, binary.LittleEndian, &h)
}

// Encode writes m to w as an uncompressed TGA. *image.Gray encodes as
// 8-bit grayscale, everything else as 32-bit truecolor.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 || b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		return ErrDimensions
	}

	h := Header{
		Width:  uint16(b.Dx()),
		Height: uint16(b.Dy()),
	}

	bw := bufio.NewWriter(w)

	if gray, ok := m.(*image.Gray); ok {
		h.Type = TypeGrayScale
		h.PixelDepth = 8
		h.Descriptor = descOut

		if err := writeHeader(bw, h); err != nil {
			return err
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := gray.Pix[(y-b.Min.Y)*gray.Stride:]
			if _, err := bw.Write(row[:b.Dx()]); err != nil {
				return err
			}
		}
		return bw.Flush()
	}

	h.Type = TypeTrueColor
	h.PixelDepth = 32
	h.Descriptor = descOutAlpha

	if err := writeHeader(bw, h); err != nil {
		return err
	}

	var px [4]byte
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			px[0], px[1], px[2], px[3] = c.B, c.G, c.R, c.A
			if _, err := bw.Write(px[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// EncodeColorMapped writes m to w as an uncompressed color-mapped TGA with
// a 24-bit palette and 8-bit indices, quantizing to at most 256 colors
// when m is not already paletted.
func EncodeColorMapped(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 || b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		return ErrDimensions
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil || len(pm.Palette) > 256 {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, 256), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	h := Header{
		MapType:      1,
		Type:         TypeColorMapped,
		MapLength:    uint16(len(pm.Palette)),
		MapEntrySize: 24,
		Width:        uint16(b.Dx()),
		Height:       uint16(b.Dy()),
		PixelDepth:   8,
		Descriptor:   descOut,
	}

	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, h); err != nil {
		return err
	}

	// Palette entries are stored B, G, R.
	var entry [3]byte
	for _, c := range pm.Palette {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		entry[0], entry[1], entry[2] = n.B, n.G, n.R
		if _, err := bw.Write(entry[:]); err != nil {
			return err
		}
	}

	for y := pm.Rect.Min.Y; y < pm.Rect.Max.Y; y++ {
		row := pm.Pix[(y-pm.Rect.Min.Y)*pm.Stride:]
		if _, err := bw.Write(row[:b.Dx()]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
