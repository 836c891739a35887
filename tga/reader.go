package tga

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/mistgc/t1gars/buffer"
	"github.com/mistgc/t1gars/rle"
)

func readHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return h, ErrShortInput
		}
		return h, err
	}
	return h, h.validate()
}

// readColorMap copies the palette block off the front of body into a
// freshly allocated buffer and returns the remaining bytes.
func readColorMap(h Header, body []byte) (*ColorMap, []byte, error) {
	entrySize := bitsToBytes(int(h.MapEntrySize))
	size := int(h.MapLength) * entrySize

	if len(body) < size {
		return nil, nil, ErrShortInput
	}

	b, err := buffer.Alloc(size)
	if err != nil {
		return nil, nil, err
	}
	if err := b.Put(0, body[:size]); err != nil {
		b.Release()
		return nil, nil, err
	}

	return &ColorMap{
		First:     h.MapFirst,
		Count:     h.MapLength,
		EntrySize: uint8(entrySize),
		Pixels:    b,
	}, body[size:], nil
}

// assemble builds the container from a validated header and the file body
// following it. It consumes the identification field, the palette block
// and the pixel data, and fails unless the body is consumed exactly. On
// failure any buffer allocated along the way is released before returning.
func assemble(h Header, body []byte) (img *Image, err error) {
	if len(body) < int(h.IDLength) {
		return nil, ErrShortInput
	}
	body = body[h.IDLength:]

	var m *ColorMap
	defer func() {
		if err != nil && m != nil {
			m.Pixels.Release()
		}
	}()

	if h.MapType == 1 {
		if h.Type.ColorMapped() {
			if m, body, err = readColorMap(h, body); err != nil {
				return nil, err
			}
		} else {
			// The image carries a palette it does not use; skip it.
			size := int(h.MapLength) * bitsToBytes(int(h.MapEntrySize))
			if len(body) < size {
				return nil, ErrShortInput
			}
			body = body[size:]
		}
	} else if h.Type.ColorMapped() {
		return nil, ErrMapType
	}

	ps := h.pixelSize()
	size := int(h.Width) * int(h.Height) * ps

	data, err := buffer.Alloc(size)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			data.Release()
		}
	}()

	if h.Type.RLE() {
		if err := rle.Decode(data, body, ps); err != nil {
			return nil, fmt.Errorf("tga: %w", err)
		}
	} else {
		if len(body) < size {
			return nil, ErrShortInput
		}
		if len(body) > size {
			return nil, ErrLongInput
		}
		if err := data.Put(0, body); err != nil {
			return nil, err
		}
	}

	return &Image{Header: h, Data: data, Map: m}, nil
}

// Read decodes a TGA file from r into its raw container form. The caller
// owns the returned buffers and releases them with Image.Release.
func Read(r io.Reader) (*Image, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return assemble(h, body)
}

// ReadFile decodes the named TGA file into its raw container form.
func ReadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// rgb555 expands a packed 16-bit ARRRRRGG GGGBBBBB value.
func rgb555(lo, hi byte) color.NRGBA {
	v := uint16(lo) | uint16(hi)<<8
	r := uint8(v >> 10 & 0x1f)
	g := uint8(v >> 5 & 0x1f)
	b := uint8(v & 0x1f)
	return color.NRGBA{r<<3 | r>>2, g<<3 | g>>2, b<<3 | b>>2, 0xff}
}

// entryColor converts one stored value (pixel or palette entry) of the
// given width. Truecolor values are stored B, G, R[, A].
func entryColor(size int, p []byte) color.Color {
	switch size {
	case 2:
		return rgb555(p[0], p[1])
	case 3:
		return color.NRGBA{p[2], p[1], p[0], 0xff}
	default:
		return color.NRGBA{p[2], p[1], p[0], p[3]}
	}
}

// palette expands the color map into a color.Palette.
func (m *ColorMap) palette() color.Palette {
	p := make(color.Palette, m.Count)
	for i := range p {
		off := i * int(m.EntrySize)
		p[i] = entryColor(int(m.EntrySize), m.Pixels.Bytes()[off:])
	}
	return p
}

// Image converts the container to an image.Image, expanding palette
// indices and honoring the descriptor's pixel order so the result always
// has a top-left origin. The container is left intact.
func (m *Image) Image() (image.Image, error) {
	h := m.Header
	width, height := int(h.Width), int(h.Height)
	ps := h.pixelSize()
	data := m.Data.Bytes()

	// src returns the stored bytes for destination pixel (x, y).
	src := func(x, y int) []byte {
		if h.Descriptor&descTopToBottom == 0 {
			y = height - 1 - y
		}
		if h.Descriptor&descRightToLeft != 0 {
			x = width - 1 - x
		}
		off := (y*width + x) * ps
		return data[off : off+ps]
	}

	format, err := h.PixelFormat()
	if err != nil {
		return nil, err
	}

	bounds := image.Rect(0, 0, width, height)

	if h.Type.ColorMapped() {
		pm := image.NewPaletted(bounds, m.Map.palette())
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := uint16(src(x, y)[0])
				if i < m.Map.First || i-m.Map.First >= m.Map.Count {
					return nil, ErrMapIndex
				}
				pm.SetColorIndex(x, y, uint8(i-m.Map.First))
			}
		}
		return pm, nil
	}

	switch format {
	case BW8:
		img := image.NewGray(bounds)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.SetGray(x, y, color.Gray{src(x, y)[0]})
			}
		}
		return img, nil
	case BW16:
		img := image.NewGray16(bounds)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				p := src(x, y)
				img.SetGray16(x, y, color.Gray16{uint16(p[0]) | uint16(p[1])<<8})
			}
		}
		return img, nil
	default:
		img := image.NewNRGBA(bounds)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				img.Set(x, y, entryColor(ps, src(x, y)))
			}
		}
		return img, nil
	}
}

// Decode reads a TGA image from r and returns it as an image.Image.
func Decode(r io.Reader) (image.Image, error) {
	t, err := Read(r)
	if err != nil {
		return nil, err
	}
	defer t.Release()

	return t.Image()
}

// DecodeConfig returns the color model and dimensions of a TGA image
// without decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(r)
	if err != nil {
		return image.Config{}, err
	}

	format, err := h.PixelFormat()
	if err != nil {
		return image.Config{}, err
	}

	var model color.Model
	switch {
	case h.Type.ColorMapped():
		if _, err := io.CopyN(io.Discard, r, int64(h.IDLength)); err != nil {
			return image.Config{}, ErrShortInput
		}
		body := make([]byte, int(h.MapLength)*bitsToBytes(int(h.MapEntrySize)))
		if _, err := io.ReadFull(r, body); err != nil {
			return image.Config{}, ErrShortInput
		}
		m, _, err := readColorMap(h, body)
		if err != nil {
			return image.Config{}, err
		}
		defer m.Pixels.Release()
		model = m.palette()
	case format == BW8:
		model = color.GrayModel
	case format == BW16:
		model = color.Gray16Model
	default:
		model = color.NRGBAModel
	}

	return image.Config{
		ColorModel: model,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

func init() {
	// TGA has no magic header bytes; registering with an empty magic
	// string makes image.Decode try it last.
	image.RegisterFormat("tga", "", Decode, DecodeConfig)
}
