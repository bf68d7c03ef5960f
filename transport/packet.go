// Package transport implements the network transport layer that carries
// messaging-core batch blobs between peers.
//
// This package handles packet framing, UDP communication, and the
// Noise-encrypted transport variant. It deliberately knows nothing about
// message registries, hooks, or delivery classes: its only job is moving
// opaque batch bytes to and from a peer address and handing them back to
// whatever calls RegisterHandler.
//
// Example:
//
//	t, err := transport.NewUDPTransport(":33445")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	t.RegisterHandler(transport.PacketMessagingBatch, func(p *transport.Packet, addr net.Addr) error {
//	    core.HandleIncomingData(peerIDFor(addr), p.Data, 0)
//	    return nil
//	})
package transport

import (
	"errors"
)

// PacketType identifies the wire-level framing of a transport packet. It is
// one byte wide and carried as the first byte of every datagram.
type PacketType byte

const (
	// PacketMessagingBatch carries a messaging-core batch blob: a
	// BatchHeader followed by zero or more MessageHeader+payload records.
	// This is the only packet type the messaging core ever sends or
	// expects to receive.
	PacketMessagingBatch PacketType = iota + 1

	// PacketVersionNegotiation is a reserved packet type for transport
	// protocol version negotiation. Nothing in this package sends it or
	// registers a handler for it.
	PacketVersionNegotiation

	// PacketNoiseHandshake and PacketNoiseMessage are used by the
	// Noise-secured UDP variant (see secure_udp.go) to carry handshake
	// and post-handshake encrypted traffic respectively. A plain
	// UDPTransport never emits these.
	PacketNoiseHandshake
	PacketNoiseMessage
)

// Packet is the smallest unit a Transport moves across the wire.
type Packet struct {
	PacketType PacketType
	Data       []byte
}

// Serialize converts a packet to a byte slice for transmission.
func (p *Packet) Serialize() ([]byte, error) {
	if p.Data == nil {
		return nil, errors.New("packet data is nil")
	}

	// Format: [packet type (1 byte)][data (variable length)]
	result := make([]byte, 1+len(p.Data))
	result[0] = byte(p.PacketType)
	copy(result[1:], p.Data)

	return result, nil
}

// ParsePacket converts a byte slice to a Packet structure.
func ParsePacket(data []byte) (*Packet, error) {
	if len(data) < 1 {
		return nil, errors.New("packet too short")
	}

	packet := &Packet{
		PacketType: PacketType(data[0]),
		Data:       make([]byte, len(data)-1),
	}
	copy(packet.Data, data[1:])

	return packet, nil
}
