// Package messaging implements the messaging core of a game-networking
// runtime: the subsystem that marshals typed application messages to and
// from opaque byte batches addressed to remote peers.
//
// # Architecture
//
// The package is built from six collaborating pieces:
//
//   - [BufferWriter] / [BufferReader]: fixed-capacity, single-threaded
//     buffer primitives (see buffer.go).
//   - [Registry]: enumerates admitted message types at construction and
//     assigns each a dense [MessageTag] (see registry.go).
//   - [HookPipeline]: an ordered list of observers invoked at the eight
//     lifecycle points, plus two veto predicates (see hooks.go).
//   - The inbound path: [Core.HandleIncomingData] parses a blob into a
//     batch header and message records and queues them;
//     [Core.ProcessIncomingMessageQueue] dispatches them later
//     (see inbound.go).
//   - The outbound path: [Core.SendMessage] appends a serialized message
//     to a per-peer, per-delivery-class tail batch;
//     [Core.ProcessSendQueues] flushes every peer's queue through a
//     [Sender] (see outbound.go).
//   - [Core]: ties the above together and owns peer lifecycle
//     (see core.go).
//
// # Usage
//
//	catalog := messaging.NewCatalog()
//	catalog.Register(pingDescriptor)
//
//	registry, err := messaging.NewRegistry(ownerHandle, catalog)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	core := messaging.NewCore(registry, sender)
//	core.ClientConnected(peerID)
//
//	core.SendMessage(ping, messaging.DeliveryUnreliable, []uint64{peerID})
//	core.ProcessSendQueues()
//
//	core.HandleIncomingData(peerID, blob, receiveTime)
//	core.ProcessIncomingMessageQueue()
//
// # Concurrency
//
// The core is single-threaded and non-reentrant. Every exported method on
// [Core] must be serialized by the caller; none of them take an internal
// lock. See the package-level invariant note on [Core] for details.
package messaging
