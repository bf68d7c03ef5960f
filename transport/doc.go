// Package transport provides the network transports that carry
// messaging-core batch blobs between peers: a plain UDP transport and a
// Noise-secured variant layered on top of it.
//
// # Architecture
//
// The messaging core never touches a socket. It depends only on the
// narrow messaging.Sender interface (Send(peerID, delivery, *BufferWriter)
// error); this package's job is to implement that interface and to
// deliver inbound batch bytes back into the core via
// Core.HandleIncomingData.
//
// The broader Transport interface is the shared shape behind both
// implementations:
//
//	type Transport interface {
//	    Close() error
//	    LocalAddr() net.Addr
//	    RegisterHandler(packetType PacketType, handler PacketHandler)
//	}
//
// # UDP Transport
//
//	t, err := transport.NewUDPTransport(":33445")
//	t.RegisterPeer(peerID, remoteAddr)
//	// t now satisfies messaging.Sender and can be passed to messaging.NewCore
//
// UDP delivery is connectionless and unreliable at the socket level; the
// messaging core's DeliveryClass is accepted by Send but neither written
// to the wire nor enforced by this transport.
//
// # Noise-Secured Transport
//
//	secure, err := transport.NewSecureUDPTransport(":33445", staticKeypair)
//	// Wraps UDPTransport with a Noise_XX handshake per peer, encrypting
//	// every PacketMessagingBatch payload before it reaches the wire.
//
// SecureUDPTransport performs an asynchronous Noise_XX handshake the
// first time a peer is registered and buffers nothing while it is
// outstanding: batches sent before the handshake completes are dropped
// and logged, matching the core's "transport send failure never blocks
// other peers" contract.
//
// # Packet Types
//
// All packet types are defined in packet.go:
//
//	const (
//	    PacketMessagingBatch     PacketType = 1
//	    PacketVersionNegotiation PacketType = 2
//	    PacketNoiseHandshake     PacketType = 3
//	    PacketNoiseMessage       PacketType = 4
//	)
//
// # Handler Registration
//
// Packet handlers are registered per-type for dispatch on the receive
// loop:
//
//	t.RegisterHandler(transport.PacketMessagingBatch, func(p *transport.Packet, addr net.Addr) error {
//	    core.HandleIncomingData(peerIDFor(addr), p.Data, 0)
//	    return nil
//	})
//
// # Thread Safety
//
// Both transports use sync.RWMutex to protect their handler and peer
// address maps against concurrent registration and dispatch.
//
// # Error Handling
//
// Errors are wrapped with fmt.Errorf and logged with structured fields
// via logrus.WithFields. ErrPeerUnknown is returned when Send is asked to
// deliver to a peer id with no registered address.
package transport
