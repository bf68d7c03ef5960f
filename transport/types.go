package transport

import (
	"net"
)

// PacketHandler processes an incoming packet from addr.
type PacketHandler func(packet *Packet, addr net.Addr) error

// Transport is the lifecycle and dispatch surface shared by UDPTransport
// and SecureUDPTransport. Sending a messaging-core batch goes through
// messaging.Sender instead (both types implement that too, with
// incompatible Send signatures, which is why it isn't part of this
// interface); Transport covers everything callers can do generically
// regardless of which one they construct.
type Transport interface {
	// Close shuts down the transport.
	Close() error

	// LocalAddr returns the local address the transport is listening on.
	LocalAddr() net.Addr

	// RegisterHandler registers a handler for a specific packet type.
	RegisterHandler(packetType PacketType, handler PacketHandler)
}
