package messaging

import "github.com/sirupsen/logrus"

// Core ties the message registry, hook pipeline, inbound queue, and
// per-peer outbound queues together and owns peer lifecycle.
//
// Core is single-threaded and non-reentrant. Every exported method
// (HandleIncomingData, ProcessIncomingMessageQueue, SendMessage,
// ProcessSendQueues, ClientConnected, ClientDisconnected, Dispose) must
// be serialized by the caller; none of them take an internal lock, and
// there are no suspension points inside any of them.
type Core struct {
	registry *Registry
	hooks    *HookPipeline
	sender   Sender

	sendQueues map[uint64]*PeerSendQueue
	inbound    []ReceiveQueueEntry

	log *logrus.Entry
}

// NewCore builds a Core around a frozen Registry and a Sender, with an
// empty HookPipeline that callers populate afterward via Hooks().
func NewCore(registry *Registry, sender Sender) *Core {
	return &Core{
		registry:   registry,
		hooks:      NewHookPipeline(),
		sender:     sender,
		sendQueues: make(map[uint64]*PeerSendQueue),
		log:        logrus.WithField("component", "messaging.Core"),
	}
}

// Hooks returns the pipeline so callers can Register/Unregister
// observers.
func (c *Core) Hooks() *HookPipeline { return c.hooks }

// Registry returns the frozen message registry this Core was built
// with.
func (c *Core) Registry() *Registry { return c.registry }

func (c *Core) logger() *logrus.Entry { return c.log }

// sendQueueFor returns peerID's queue, creating it if ClientConnected
// was never called for it. The messaging core tolerates this so
// SendMessage never fails merely because a caller raced connection
// setup; it is not a substitute for calling ClientConnected.
func (c *Core) sendQueueFor(peerID uint64) *PeerSendQueue {
	q, ok := c.sendQueues[peerID]
	if !ok {
		q = &PeerSendQueue{}
		c.sendQueues[peerID] = q
	}
	return q
}

// ClientConnected idempotently creates peerID's send queue.
func (c *Core) ClientConnected(peerID uint64) {
	if _, ok := c.sendQueues[peerID]; ok {
		return
	}
	c.sendQueues[peerID] = &PeerSendQueue{}
}

// ClientDisconnected releases every writer in peerID's queue (discarding
// any unsent batches without transport emission) and removes the queue.
func (c *Core) ClientDisconnected(peerID uint64) {
	delete(c.sendQueues, peerID)
}

// ConnectedPeers returns the ids of every peer with a live send queue.
// Read-only; the order is unspecified.
func (c *Core) ConnectedPeers() []uint64 {
	peers := make([]uint64, 0, len(c.sendQueues))
	for id := range c.sendQueues {
		peers = append(peers, id)
	}
	return peers
}

// Dispose releases every peer's queue and the inbound queue. Dispose is
// idempotent.
func (c *Core) Dispose() {
	c.sendQueues = make(map[uint64]*PeerSendQueue)
	for i := range c.inbound {
		c.inbound[i].Reader.Release()
	}
	c.inbound = nil
}
