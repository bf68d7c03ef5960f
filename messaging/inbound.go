package messaging

// ReceiveQueueEntry is one parsed-but-not-yet-dispatched inbound
// message. Reader owns a short-lived, per-frame-scope allocation that
// must be released after dispatch on every exit path, including the
// CanReceive-veto path and the unknown-tag path.
type ReceiveQueueEntry struct {
	Reader    *BufferReader
	Header    MessageHeader
	SenderID  uint64
	Timestamp float32
}

// HandleIncomingData parses one transport blob into a BatchHeader and
// its message records, copies each message payload into a freshly
// owned BufferReader, and enqueues it for later dispatch.
//
// The transport's blob is only valid for the duration of this call;
// deferring dispatch to a later ProcessIncomingMessageQueue tick
// requires owning the payload bytes, which is why each message is
// copied rather than referenced.
//
// Malformed input (too-short buffer, or a message_size exceeding
// remaining bytes) truncates processing of the current batch: the
// batch is discarded from that point on, but the core remains
// operational and bytes already parsed as complete messages remain
// queued.
func (c *Core) HandleIncomingData(peerID uint64, data []byte, receiveTime float32) {
	r := NewBorrowingReader(data)

	header, err := ReadBatchHeader(r)
	if err != nil {
		c.log.WithFields(map[string]any{
			"peer_id": peerID,
			"len":     len(data),
		}).WithError(err).Warn("discarding short inbound blob")
		return
	}

	totalLen := len(data)
	c.hooks.beforeReceiveBatch(peerID, int(header.Count), totalLen)

	for i := 0; i < int(header.Count); i++ {
		msgHeader, err := ReadMessageHeader(r)
		if err != nil {
			c.log.WithFields(map[string]any{
				"peer_id": peerID,
				"index":   i,
				"of":      header.Count,
			}).WithError(err).Warn("truncated batch: missing message header")
			break
		}

		if err := r.TryBeginRead(int(msgHeader.MessageSize)); err != nil {
			c.log.WithFields(map[string]any{
				"peer_id":      peerID,
				"message_size": msgHeader.MessageSize,
				"remaining":    r.Remaining(),
			}).WithError(err).Warn("truncated batch: payload exceeds remaining bytes")
			break
		}

		owned := NewOwningReader(r.PeekRemaining(), 0, int(msgHeader.MessageSize))
		r.Advance(int(msgHeader.MessageSize))

		c.inbound = append(c.inbound, ReceiveQueueEntry{
			Reader:    owned,
			Header:    msgHeader,
			SenderID:  peerID,
			Timestamp: receiveTime,
		})
	}

	c.hooks.afterReceiveBatch(peerID, int(header.Count), totalLen)
}

// ProcessIncomingMessageQueue drains the inbound queue in insertion
// order, dispatching each entry to its registered handler. The reader
// for every entry is released on every exit path: unknown tag, a
// CanReceive veto, or a successful (or panicking) handler invocation.
func (c *Core) ProcessIncomingMessageQueue() {
	queue := c.inbound
	c.inbound = nil

	for _, entry := range queue {
		c.dispatchOne(entry)
	}
}

func (c *Core) dispatchOne(entry ReceiveQueueEntry) {
	defer entry.Reader.Release()

	handler, ok := c.registry.handlerFor(entry.Header.MessageTag)
	if !ok {
		c.log.WithFields(map[string]any{
			"sender_id": entry.SenderID,
			"tag":       entry.Header.MessageTag,
		}).Warn("discarding message with unknown tag")
		return
	}

	if !c.hooks.canReceive(entry.SenderID, entry.Header.MessageTag) {
		return
	}

	ctx := &NetworkContext{
		Owner:     c.registry.OwnerHandle(),
		SenderID:  entry.SenderID,
		Timestamp: entry.Timestamp,
		Header:    entry.Header,
	}

	c.hooks.beforeReceiveMessage(ctx)
	c.invokeHandler(handler, entry.Reader, ctx)
	c.hooks.afterReceiveMessage(ctx)
}

// invokeHandler calls handler under a recover boundary: any panic
// escaping a message handler is logged and swallowed so one peer's
// corrupt or buggy message handler can never stall the dispatcher for
// the rest of the queue.
func (c *Core) invokeHandler(handler ReceiveFunc, r *BufferReader, ctx *NetworkContext) {
	defer func() {
		if rec := recover(); rec != nil {
			c.log.WithFields(map[string]any{
				"sender_id": ctx.SenderID,
				"tag":       ctx.Header.MessageTag,
				"panic":     rec,
			}).Error("message handler panicked")
		}
	}()

	if err := handler(r, ctx); err != nil {
		c.log.WithFields(map[string]any{
			"sender_id": ctx.SenderID,
			"tag":       ctx.Header.MessageTag,
		}).WithError(err).Error("message handler returned error")
	}
}
