package messaging

import "github.com/coldvane/msgcore/limits"

// Sender is the messaging core's only outbound dependency: the
// transport that physically delivers a finished batch blob to a peer.
// The writer is consumed read-only; Core releases it after Send
// returns, regardless of whether Send succeeded.
type Sender interface {
	Send(peerID uint64, delivery DeliveryClass, w *BufferWriter) error
}

// SendBatch holds one partially (or fully) filled outbound batch buffer.
// Invariants: the writer's cursor is always >= BatchHeaderSize();
// header.Count equals the number of MessageHeader records appended
// since the writer was reset; writer.Position()-BatchHeaderSize() is
// the total payload+headers bytes.
type SendBatch struct {
	delivery DeliveryClass
	header   BatchHeader
	writer   *BufferWriter
}

func newSendBatch(delivery DeliveryClass) *SendBatch {
	maxBytes := limits.MaxBatchBytesFor(delivery.IsFragmented())
	w := NewBufferWriter(limits.NonFragmentedMaxBatchBytes, maxBytes)
	w.Seek(batchHeaderSize) // reserve the not-yet-written BatchHeader slot
	return &SendBatch{delivery: delivery, writer: w}
}

// fits reports whether payloadLen bytes plus a MessageHeader can still
// be appended to this batch without exceeding its ceiling.
func (b *SendBatch) fits(payloadLen int) bool {
	return b.writer.Remaining() >= messageHeaderSize+payloadLen
}

// append writes a MessageHeader and payload into the batch and
// increments the message count. Callers must have already checked fits.
func (b *SendBatch) append(tag MessageTag, payload []byte) error {
	if err := b.writer.TryBeginWrite(messageHeaderSize + len(payload)); err != nil {
		return err
	}
	MessageHeader{MessageSize: uint16(len(payload)), MessageTag: tag}.WriteTo(b.writer)
	b.writer.WriteBytes(payload)
	b.header.Count++
	return nil
}

// PeerSendQueue is the ordered sequence of SendBatch for one peer. The
// tail is the only appendable batch: a new batch is opened only when the
// tail's delivery class differs from the next message's, or the tail
// lacks room for the next message.
type PeerSendQueue struct {
	batches []*SendBatch
}

// tail returns the appendable batch, or nil if the queue is empty.
func (q *PeerSendQueue) tail() *SendBatch {
	if len(q.batches) == 0 {
		return nil
	}
	return q.batches[len(q.batches)-1]
}

// openBatch appends a new empty batch for delivery and returns it.
func (q *PeerSendQueue) openBatch(delivery DeliveryClass) *SendBatch {
	b := newSendBatch(delivery)
	q.batches = append(q.batches, b)
	return b
}

// resolveTail returns the batch that payloadLen bytes for delivery
// should be appended to, opening a new batch when the tail's delivery
// class differs or it lacks room. This is the tail-only append policy
// that makes batching legal: preserving per-peer per-delivery insertion
// order lets receivers rely on emission order within a delivery class,
// while crossing delivery classes forces a new batch because the
// transport may reorder across them.
func (q *PeerSendQueue) resolveTail(delivery DeliveryClass, payloadLen int) *SendBatch {
	tail := q.tail()
	if tail == nil {
		return q.openBatch(delivery)
	}
	if tail.delivery != delivery || !tail.fits(payloadLen) {
		return q.openBatch(delivery)
	}
	return tail
}

// SendMessage serializes message into a scratch writer and, for each
// peer in recipients (in order), appends it to that peer's tail batch
// unless a hook vetoes delivery. recipients may be any slice of peer
// ids, including a borrowed one; the core never retains it past this
// call.
//
// The scratch serialization ceiling is maxBatchBytes -
// MessageHeaderSize() - BatchHeaderSize(), tighter than the naive
// maxBatchBytes-MessageHeaderSize() bound: see DESIGN.md's Open
// Question Decisions for why the looser bound would silently drop a
// message that serializes successfully but can never fit in any batch.
func (c *Core) SendMessage(message Serializer, delivery DeliveryClass, recipients []uint64) error {
	tag, ok := c.registry.TagFor(TypeName(message))
	if !ok {
		return ErrUnknownTag
	}

	maxBatchBytes := limits.MaxBatchBytesFor(delivery.IsFragmented())
	scratchCeiling := maxBatchBytes - messageHeaderSize - batchHeaderSize
	scratch := NewBufferWriter(limits.NonFragmentedMaxBatchBytes-messageHeaderSize, scratchCeiling)
	if err := message.Serialize(scratch); err != nil {
		return err
	}
	payload := scratch.Bytes()

	for _, peerID := range recipients {
		if !c.hooks.canSend(peerID, tag, delivery) {
			continue
		}
		c.hooks.beforeSendMessage(peerID, tag, delivery)

		queue := c.sendQueueFor(peerID)
		batch := queue.resolveTail(delivery, len(payload))
		if err := batch.append(tag, payload); err != nil {
			c.logger().WithError(err).Warn("dropping message too large for any batch")
			continue
		}

		c.hooks.afterSendMessage(peerID, tag, delivery, messageHeaderSize+len(payload))
	}
	return nil
}

// ProcessSendQueues flushes every peer's queue, in insertion order, to
// the Sender. Empty batches (header.Count == 0) are released without
// being sent. Each peer's queue is cleared once every batch has been
// handed to the Sender, regardless of whether Send succeeded.
func (c *Core) ProcessSendQueues() {
	for peerID, queue := range c.sendQueues {
		for _, batch := range queue.batches {
			if batch.header.Count == 0 {
				continue
			}
			c.hooks.beforeSendBatch(peerID, batch.delivery)

			finalLen := batch.writer.Position()
			batch.writer.Seek(0)
			_ = batch.header.WriteTo(batch.writer)
			batch.writer.Seek(finalLen)

			if err := c.sender.Send(peerID, batch.delivery, batch.writer); err != nil {
				c.logger().WithFields(map[string]any{
					"peer_id":  peerID,
					"delivery": batch.delivery,
				}).WithError(err).Warn("transport send failed")
			}

			c.hooks.afterSendBatch(peerID, batch.delivery)
		}
		queue.batches = nil
	}
}
