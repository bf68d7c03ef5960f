package messaging

import "encoding/binary"

// nativeEndian is used for every multibyte field on the wire. The
// messaging core is peer-to-peer between homogeneous endpoints of the
// same build, so native byte order is intentional rather than an
// oversight: see the Open Questions note in DESIGN.md about
// cross-architecture interop.
var nativeEndian = binary.NativeEndian

// MessageTag is a dense, unsigned 8-bit identifier assigned to each
// admitted message type at registry build time. At most MaxMessageTypes
// (256) distinct types can be admitted.
type MessageTag uint8

// DeliveryClass is an opaque transport-level parameter selecting
// reliability, ordering, and fragmentation. The messaging core only
// distinguishes DeliveryReliableFragmentedSequenced, which raises the
// per-batch byte ceiling; every other value shares the non-fragmented
// ceiling.
type DeliveryClass uint8

const (
	// DeliveryUnreliable is fire-and-forget, unordered delivery.
	DeliveryUnreliable DeliveryClass = iota
	// DeliveryUnreliableSequenced drops out-of-order duplicates but does
	// not retransmit.
	DeliveryUnreliableSequenced
	// DeliveryReliable guarantees eventual delivery without ordering.
	DeliveryReliable
	// DeliveryReliableSequenced guarantees delivery and discards stale
	// duplicates.
	DeliveryReliableSequenced
	// DeliveryReliableOrdered guarantees delivery and in-order dispatch.
	DeliveryReliableOrdered
	// DeliveryReliableFragmentedSequenced is the one delivery class the
	// core treats specially: it raises the per-batch ceiling from
	// NonFragmentedMaxBatchBytes to FragmentedMaxBatchBytes because the
	// transport is expected to fragment and reassemble below the core.
	DeliveryReliableFragmentedSequenced
)

// IsFragmented reports whether d is the one delivery class that raises
// the per-batch byte ceiling.
func (d DeliveryClass) IsFragmented() bool {
	return d == DeliveryReliableFragmentedSequenced
}

const (
	// batchHeaderSize is the fixed wire size of a BatchHeader: a single
	// uint16 message count.
	batchHeaderSize = 2

	// messageHeaderSize is the fixed wire size of a MessageHeader: a
	// uint16 message_size followed by a uint8 message_tag.
	messageHeaderSize = 3
)

// BatchHeaderSize returns the fixed wire size of a BatchHeader.
func BatchHeaderSize() int { return batchHeaderSize }

// MessageHeaderSize returns the fixed wire size of a MessageHeader.
func MessageHeaderSize() int { return messageHeaderSize }

// BatchHeader carries the count of messages in a batch. It is written
// at offset 0 of every outbound batch buffer last (after payloads are
// appended) and read first from every inbound buffer.
type BatchHeader struct {
	Count uint16
}

// WriteTo writes the header at the writer's current cursor. Callers
// back-patch by seeking to 0 before calling WriteTo at flush time.
func (h BatchHeader) WriteTo(w *BufferWriter) error {
	if err := w.TryBeginWrite(batchHeaderSize); err != nil {
		return err
	}
	w.WriteUint16(h.Count)
	return nil
}

// ReadBatchHeader reads a BatchHeader from the reader's current cursor.
func ReadBatchHeader(r *BufferReader) (BatchHeader, error) {
	if err := r.TryBeginRead(batchHeaderSize); err != nil {
		return BatchHeader{}, err
	}
	return BatchHeader{Count: r.ReadUint16()}, nil
}

// MessageHeader precedes each message payload within a batch.
type MessageHeader struct {
	MessageSize uint16
	MessageTag  MessageTag
}

// WriteTo writes the header at the writer's current cursor.
func (h MessageHeader) WriteTo(w *BufferWriter) {
	w.WriteUint16(h.MessageSize)
	w.WriteUint8(uint8(h.MessageTag))
}

// ReadMessageHeader reads a MessageHeader from the reader's current
// cursor.
func ReadMessageHeader(r *BufferReader) (MessageHeader, error) {
	if err := r.TryBeginRead(messageHeaderSize); err != nil {
		return MessageHeader{}, err
	}
	return MessageHeader{
		MessageSize: r.ReadUint16(),
		MessageTag:  MessageTag(r.ReadUint8()),
	}, nil
}
