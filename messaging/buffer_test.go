package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferWriter_GrowsWithinCeiling(t *testing.T) {
	w := NewBufferWriter(4, 16)
	require.NoError(t, w.TryBeginWrite(10))
	w.WriteBytes(make([]byte, 10))
	assert.Equal(t, 10, w.Position())
}

func TestBufferWriter_RejectsOverCeiling(t *testing.T) {
	w := NewBufferWriter(4, 8)
	err := w.TryBeginWrite(9)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestBufferWriter_SeekForBackPatch(t *testing.T) {
	w := NewBufferWriter(16, 16)
	w.Seek(2)
	require.NoError(t, w.TryBeginWrite(4))
	w.WriteUint32(0xdeadbeef)
	end := w.Position()

	w.Seek(0)
	require.NoError(t, w.TryBeginWrite(2))
	w.WriteUint16(7)
	w.Seek(end)

	assert.Equal(t, end, w.Position())
	assert.Equal(t, uint16(7), nativeEndian.Uint16(w.Bytes()[0:2]))
}

func TestBufferReader_BorrowingRoundTrip(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	r := NewBorrowingReader(data)
	require.NoError(t, r.TryBeginRead(2))
	assert.Equal(t, uint8(1), r.ReadUint8())
	assert.Equal(t, uint8(2), r.ReadUint8())
	assert.Equal(t, 3, r.Remaining())
}

func TestBufferReader_OwningCopiesIndependently(t *testing.T) {
	data := []byte{9, 9, 9, 9}
	r := NewOwningReader(data, 0, 4)
	data[0] = 0 // mutate source after copy
	assert.Equal(t, uint8(9), r.ReadUint8())
}

func TestBufferReader_ShortReadFails(t *testing.T) {
	r := NewBorrowingReader([]byte{1})
	err := r.TryBeginRead(4)
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestBufferReader_ReleaseIsIdempotent(t *testing.T) {
	r := NewOwningReader([]byte{1, 2}, 0, 2)
	assert.False(t, r.Released())
	r.Release()
	r.Release()
	assert.True(t, r.Released())
}
