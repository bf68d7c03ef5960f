package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coldvane/msgcore/messaging"
)

// ErrPeerUnknown is returned by UDPTransport.Send when asked to deliver a
// batch to a peer id that was never registered via RegisterPeer.
var ErrPeerUnknown = errors.New("transport: no address registered for peer")

// UDPTransport is a connectionless Transport implementation. In addition
// to the generic Transport interface it satisfies messaging.Sender,
// mapping the messaging core's numeric peer ids to net.Addr values so the
// core never has to know about sockets.
type UDPTransport struct {
	conn       net.PacketConn
	listenAddr net.Addr
	handlers   map[PacketType]PacketHandler
	peerAddrs  map[uint64]net.Addr
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
	log        *logrus.Entry
}

// NewUDPTransport creates a new UDP transport listener and starts its
// receive loop in the background.
func NewUDPTransport(listenAddr string) (*UDPTransport, error) {
	conn, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen udp %s: %w", listenAddr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	t := &UDPTransport{
		conn:       conn,
		listenAddr: conn.LocalAddr(),
		handlers:   make(map[PacketType]PacketHandler),
		peerAddrs:  make(map[uint64]net.Addr),
		ctx:        ctx,
		cancel:     cancel,
		log:        logrus.WithField("component", "transport.udp"),
	}

	go t.processPackets()

	return t, nil
}

// RegisterPeer associates peerID with the address the messaging core's
// Sender implementation will deliver batches to. Callers typically do
// this from the same handler that calls Core.ClientConnected.
func (t *UDPTransport) RegisterPeer(peerID uint64, addr net.Addr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peerAddrs[peerID] = addr
}

// UnregisterPeer removes a peer's address mapping. Callers typically do
// this alongside Core.ClientDisconnected.
func (t *UDPTransport) UnregisterPeer(peerID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.peerAddrs, peerID)
}

// Send implements messaging.Sender: it wraps the finished batch blob in a
// PacketMessagingBatch envelope and writes it to the peer's registered
// address. The delivery class is not yet used by this transport (UDP
// offers only unreliable delivery); it is accepted so that a future
// reliable transport can branch on it without changing the interface.
func (t *UDPTransport) Send(peerID uint64, delivery messaging.DeliveryClass, w *messaging.BufferWriter) error {
	t.mu.RLock()
	addr, ok := t.peerAddrs[peerID]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: peer %d", ErrPeerUnknown, peerID)
	}

	packet := &Packet{PacketType: PacketMessagingBatch, Data: w.Bytes()}
	return t.SendPacket(packet, addr)
}

// SendPacket sends a framed packet to an explicit address, bypassing the
// peer registry. RegisterHandler based callers use this directly; the
// messaging.Sender path (Send, above) is a thin wrapper over it.
func (t *UDPTransport) SendPacket(packet *Packet, addr net.Addr) error {
	data, err := packet.Serialize()
	if err != nil {
		return fmt.Errorf("transport: serialize packet: %w", err)
	}

	if _, err := t.conn.WriteTo(data, addr); err != nil {
		return fmt.Errorf("transport: write to %s: %w", addr, err)
	}
	return nil
}

// RegisterHandler registers a handler for a specific packet type.
func (t *UDPTransport) RegisterHandler(packetType PacketType, handler PacketHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[packetType] = handler
}

// Close shuts down the transport.
func (t *UDPTransport) Close() error {
	t.cancel()
	return t.conn.Close()
}

// LocalAddr returns the local address the transport is listening on.
func (t *UDPTransport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

func (t *UDPTransport) processPackets() {
	buffer := make([]byte, 65536)

	for {
		select {
		case <-t.ctx.Done():
			return
		default:
			t.processIncomingPacket(buffer)
		}
	}
}

func (t *UDPTransport) processIncomingPacket(buffer []byte) {
	data, addr, err := t.readPacketData(buffer)
	if err != nil {
		return
	}

	packet, err := ParsePacket(data)
	if err != nil {
		t.log.WithError(err).Warn("discarding malformed packet")
		return
	}

	t.dispatchPacketToHandler(packet, addr)
}

func (t *UDPTransport) readPacketData(buffer []byte) ([]byte, net.Addr, error) {
	_ = t.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))

	n, addr, err := t.conn.ReadFrom(buffer)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, nil, err
		}
		t.log.WithError(err).Debug("read error")
		return nil, nil, err
	}

	return buffer[:n], addr, nil
}

func (t *UDPTransport) dispatchPacketToHandler(packet *Packet, addr net.Addr) {
	t.mu.RLock()
	handler, exists := t.handlers[packet.PacketType]
	t.mu.RUnlock()

	if !exists {
		return
	}
	go func() {
		if err := handler(packet, addr); err != nil {
			t.log.WithFields(logrus.Fields{
				"packet_type": packet.PacketType,
				"addr":        addr,
			}).WithError(err).Warn("packet handler returned an error")
		}
	}()
}
