package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchHeader_RoundTrip(t *testing.T) {
	w := NewBufferWriter(BatchHeaderSize(), BatchHeaderSize())
	require.NoError(t, BatchHeader{Count: 42}.WriteTo(w))

	r := NewBorrowingReader(w.Bytes())
	h, err := ReadBatchHeader(r)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), h.Count)
}

func TestMessageHeader_RoundTrip(t *testing.T) {
	w := NewBufferWriter(MessageHeaderSize(), MessageHeaderSize())
	require.NoError(t, w.TryBeginWrite(MessageHeaderSize()))
	MessageHeader{MessageSize: 100, MessageTag: 7}.WriteTo(w)

	r := NewBorrowingReader(w.Bytes())
	h, err := ReadMessageHeader(r)
	require.NoError(t, err)
	assert.Equal(t, uint16(100), h.MessageSize)
	assert.Equal(t, MessageTag(7), h.MessageTag)
}

func TestDeliveryClass_OnlyFragmentedRaisesCeiling(t *testing.T) {
	assert.True(t, DeliveryReliableFragmentedSequenced.IsFragmented())
	for _, d := range []DeliveryClass{
		DeliveryUnreliable,
		DeliveryUnreliableSequenced,
		DeliveryReliable,
		DeliveryReliableSequenced,
		DeliveryReliableOrdered,
	} {
		assert.False(t, d.IsFragmented(), "delivery class %v should not be fragmented", d)
	}
}
