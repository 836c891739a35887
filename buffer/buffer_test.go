package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlloc(t *testing.T) {
	b, err := Alloc(16)
	require.NoError(t, err)

	assert.Equal(t, 16, b.Cap())
	assert.Equal(t, make([]byte, 16), b.Bytes(), "buffers are zero-filled")
	assert.False(t, b.Released())
}

func TestAllocZero(t *testing.T) {
	b, err := Alloc(0)
	require.NoError(t, err)

	assert.Equal(t, 0, b.Cap())
	assert.False(t, b.Released())
}

func TestAllocRefused(t *testing.T) {
	_, err := Alloc(-1)
	assert.ErrorIs(t, err, ErrAllocation)

	_, err = Alloc(MaxCap + 1)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestPut(t *testing.T) {
	b, err := Alloc(4)
	require.NoError(t, err)

	require.NoError(t, b.Put(0, []byte{1, 2}))
	require.NoError(t, b.Put(2, []byte{3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, b.Bytes())
}

func TestPutOutOfRange(t *testing.T) {
	b, err := Alloc(4)
	require.NoError(t, err)
	require.NoError(t, b.Put(0, []byte{1, 2, 3, 4}))

	assert.ErrorIs(t, b.Put(3, []byte{9, 9}), ErrRange)
	assert.ErrorIs(t, b.Put(-1, []byte{9}), ErrRange)
	assert.Equal(t, []byte{1, 2, 3, 4}, b.Bytes(), "failed writes leave the buffer untouched")
}

func TestRepeat(t *testing.T) {
	b, err := Alloc(6)
	require.NoError(t, err)

	require.NoError(t, b.Repeat(0, []byte{0xab, 0xcd}, 3))
	assert.Equal(t, []byte{0xab, 0xcd, 0xab, 0xcd, 0xab, 0xcd}, b.Bytes())
}

func TestRepeatOutOfRange(t *testing.T) {
	b, err := Alloc(5)
	require.NoError(t, err)

	assert.ErrorIs(t, b.Repeat(0, []byte{0xab, 0xcd}, 3), ErrRange)
	assert.Equal(t, make([]byte, 5), b.Bytes())
}

func TestRepeatZeroCount(t *testing.T) {
	b, err := Alloc(2)
	require.NoError(t, err)

	assert.NoError(t, b.Repeat(0, []byte{0xff}, 0))
	assert.Equal(t, []byte{0, 0}, b.Bytes())
}

func TestRelease(t *testing.T) {
	b, err := Alloc(4)
	require.NoError(t, err)

	b.Release()
	assert.True(t, b.Released())
	assert.Equal(t, 0, b.Cap())
	assert.ErrorIs(t, b.Put(0, []byte{1}), ErrReleased)
	assert.ErrorIs(t, b.Repeat(0, []byte{1}, 1), ErrReleased)

	// Releasing twice is harmless.
	b.Release()
	assert.True(t, b.Released())
}
