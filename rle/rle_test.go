package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistgc/t1gars/buffer"
)

func decode(t *testing.T, src []byte, capacity, unitSize int) ([]byte, error) {
	t.Helper()
	dst, err := buffer.Alloc(capacity)
	require.NoError(t, err)
	return dst.Bytes(), Decode(dst, src, unitSize)
}

func TestDecode(t *testing.T) {
	for _, tc := range []struct {
		name     string
		src      []byte
		unitSize int
		want     []byte
	}{
		{
			name:     "raw_packet",
			src:      []byte{0x02, 0x11, 0x22, 0x33},
			unitSize: 1,
			want:     []byte{0x11, 0x22, 0x33},
		},
		{
			name:     "run_packet",
			src:      []byte{0x83, 0xff},
			unitSize: 1,
			want:     []byte{0xff, 0xff, 0xff, 0xff},
		},
		{
			name:     "minimum_count",
			src:      []byte{0x80, 0xaa, 0x00, 0xbb},
			unitSize: 1,
			want:     []byte{0xaa, 0xbb},
		},
		{
			name:     "run_then_raw",
			src:      []byte{0x83, 0xff, 0x02, 0x11, 0x22, 0x33},
			unitSize: 1,
			want:     []byte{0xff, 0xff, 0xff, 0xff, 0x11, 0x22, 0x33},
		},
		{
			name:     "max_count",
			src:      append([]byte{0xff}, 0x5a),
			unitSize: 1,
			want:     bytesRepeat(0x5a, 128),
		},
		{
			name:     "run_packet_three_byte_units",
			src:      []byte{0x81, 0x01, 0x02, 0x03},
			unitSize: 3,
			want:     []byte{0x01, 0x02, 0x03, 0x01, 0x02, 0x03},
		},
		{
			name:     "raw_packet_three_byte_units",
			src:      []byte{0x01, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
			unitSize: 3,
			want:     []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
		},
		{
			name:     "empty_input",
			src:      nil,
			unitSize: 1,
			want:     []byte{},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decode(t, tc.src, len(tc.want), tc.unitSize)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func bytesRepeat(b byte, n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = b
	}
	return p
}

func TestDecodeCapacity(t *testing.T) {
	// A run of 4 into a buffer of 4 is an exact fit.
	_, err := decode(t, []byte{0x83, 0xff}, 4, 1)
	assert.NoError(t, err)

	// The same run into a buffer of 3 overflows by one byte.
	got, err := decode(t, []byte{0x83, 0xff}, 3, 1)
	assert.ErrorIs(t, err, ErrCapacity)
	assert.Equal(t, []byte{0, 0, 0}, got, "nothing is written past or before the failed packet")
}

func TestDecodeTruncated(t *testing.T) {
	for _, tc := range []struct {
		name     string
		src      []byte
		capacity int
		unitSize int
	}{
		{"run_missing_unit", []byte{0x84}, 5, 1},
		{"run_partial_unit", []byte{0x84, 0x01}, 15, 3},
		{"raw_missing_units", []byte{0x02, 0x11}, 3, 1},
		{"raw_partial_unit", []byte{0x01, 0x01, 0x02, 0x03, 0x04}, 6, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decode(t, tc.src, tc.capacity, tc.unitSize)
			assert.ErrorIs(t, err, ErrTruncated)
		})
	}
}

func TestDecodeShortData(t *testing.T) {
	// Input decodes cleanly but fills only two of four bytes.
	_, err := decode(t, []byte{0x81, 0xff}, 4, 1)
	assert.ErrorIs(t, err, ErrShortData)

	// Empty input cannot fill a non-empty buffer.
	_, err = decode(t, nil, 1, 1)
	assert.ErrorIs(t, err, ErrShortData)
}

func TestDecodeUnitSize(t *testing.T) {
	_, err := decode(t, []byte{0x80, 0x00}, 1, 0)
	assert.ErrorIs(t, err, ErrUnitSize)
}

func TestDecodeIdempotent(t *testing.T) {
	src := []byte{0x83, 0xff, 0x02, 0x11, 0x22, 0x33, 0x81, 0x00}

	first, err := decode(t, src, 9, 1)
	require.NoError(t, err)
	second, err := decode(t, src, 9, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMaxEncodedLen(t *testing.T) {
	assert.Equal(t, 0, MaxEncodedLen(0, 1))
	assert.Equal(t, 0, MaxEncodedLen(10, 0))
	// One identification byte per unit in the worst case.
	assert.Equal(t, 8, MaxEncodedLen(4, 1))
	assert.Equal(t, 8, MaxEncodedLen(6, 3))
}
