package transport

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/flynn/noise"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/curve25519"

	"github.com/coldvane/msgcore/messaging"
)

// GenerateStaticKeypair creates a fresh Curve25519 keypair suitable for
// passing to NewSecureUDPTransport. It exists separately from the noise
// package's own key generation so callers can persist and reuse a
// long-term identity across restarts.
func GenerateStaticKeypair() (noise.DHKey, error) {
	var priv [32]byte
	if _, err := rand.Read(priv[:]); err != nil {
		return noise.DHKey{}, fmt.Errorf("transport: generate static key: %w", err)
	}

	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return noise.DHKey{}, fmt.Errorf("transport: derive public key: %w", err)
	}

	return noise.DHKey{Private: priv[:], Public: pub}, nil
}

// LoadStaticKeypair reads a hex-encoded Curve25519 private key from path
// (one line, as written by config.StaticKeyFile's documented format) and
// derives the matching public key. It is the counterpart to
// GenerateStaticKeypair for processes that persist their identity across
// restarts instead of using a fresh ephemeral key every time.
func LoadStaticKeypair(path string) (noise.DHKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return noise.DHKey{}, fmt.Errorf("transport: read static key file %s: %w", path, err)
	}

	priv, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return noise.DHKey{}, fmt.Errorf("transport: decode static key file %s: %w", path, err)
	}
	if len(priv) != 32 {
		return noise.DHKey{}, fmt.Errorf("transport: static key file %s: want 32 bytes, got %d", path, len(priv))
	}

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return noise.DHKey{}, fmt.Errorf("transport: derive public key from %s: %w", path, err)
	}

	return noise.DHKey{Private: priv, Public: pub}, nil
}

// peerSession tracks one peer's Noise_XX handshake and, once it
// completes, the cipher states used to seal and open messaging batches.
// Noise_XX is a three-message pattern (-> e; <- e, ee, s, es; -> s, se):
// isInitiator records which two of those three messages this side writes
// so handleHandshake knows whether an inbound packet is message 2 or
// message 3.
type peerSession struct {
	mu          sync.Mutex
	addr        net.Addr
	handshake   *noise.HandshakeState
	isInitiator bool
	send        *noise.CipherState
	recv        *noise.CipherState
	ready       bool
}

// SecureUDPTransport wraps a UDPTransport with a Noise_XX handshake per
// peer, so every PacketMessagingBatch payload is encrypted and
// authenticated before it reaches the wire. It satisfies messaging.Sender
// the same way UDPTransport does; the messaging core is unaware that its
// batches are being encrypted underneath it.
//
// Noise_XX (rather than IK) is used because peers register with a bare
// peer id and address and may have no prior knowledge of each other's
// static key; XX performs mutual authentication during the handshake
// itself instead of requiring it out of band.
type SecureUDPTransport struct {
	udp        *UDPTransport
	staticKey  noise.DHKey
	mu         sync.RWMutex
	sessions   map[uint64]*peerSession
	pending    map[string]*peerSession // responder sessions awaiting PromotePending
	appHandler PacketHandler
	log        *logrus.Entry
}

// NewSecureUDPTransport starts a Noise-secured UDP transport listening on
// listenAddr, using staticKey as this endpoint's long-term identity.
func NewSecureUDPTransport(listenAddr string, staticKey noise.DHKey) (*SecureUDPTransport, error) {
	udp, err := NewUDPTransport(listenAddr)
	if err != nil {
		return nil, err
	}

	s := &SecureUDPTransport{
		udp:       udp,
		staticKey: staticKey,
		sessions:  make(map[uint64]*peerSession),
		pending:   make(map[string]*peerSession),
		log:       logrus.WithField("component", "transport.secure_udp"),
	}

	udp.RegisterHandler(PacketNoiseHandshake, s.handleHandshake)
	udp.RegisterHandler(PacketNoiseMessage, s.handleMessage)

	return s, nil
}

func (s *SecureUDPTransport) cipherSuite() noise.CipherSuite {
	return noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)
}

// RegisterPeer associates peerID with addr and initiates a Noise_XX
// handshake as the initiator. Batches sent before the handshake
// completes are dropped; see Send.
func (s *SecureUDPTransport) RegisterPeer(peerID uint64, addr net.Addr) error {
	s.udp.RegisterPeer(peerID, addr)

	config := noise.Config{
		CipherSuite:   s.cipherSuite(),
		Random:        rand.Reader,
		Pattern:       noise.HandshakeXX,
		Initiator:     true,
		StaticKeypair: s.staticKey,
	}
	hs, err := noise.NewHandshakeState(config)
	if err != nil {
		return fmt.Errorf("transport: new handshake state: %w", err)
	}

	session := &peerSession{addr: addr, handshake: hs, isInitiator: true}
	s.mu.Lock()
	s.sessions[peerID] = session
	s.mu.Unlock()

	msg, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return fmt.Errorf("transport: write handshake init: %w", err)
	}
	return s.udp.SendPacket(&Packet{PacketType: PacketNoiseHandshake, Data: msg}, addr)
}

// UnregisterPeer tears down any handshake state and forgets addr for
// peerID.
func (s *SecureUDPTransport) UnregisterPeer(peerID uint64) {
	s.udp.UnregisterPeer(peerID)
	s.mu.Lock()
	delete(s.sessions, peerID)
	s.mu.Unlock()
}

// PromotePending binds a responder session that is still address-keyed
// (created by an inbound handshake we didn't initiate) to peerID, once
// the caller learns which peer that address belongs to. It is a no-op
// returning false if no pending session exists for addr.
func (s *SecureUDPTransport) PromotePending(peerID uint64, addr net.Addr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.pending[addr.String()]
	if !ok {
		return false
	}
	delete(s.pending, addr.String())
	s.sessions[peerID] = sess
	s.udp.RegisterPeer(peerID, addr)
	return true
}

func (s *SecureUDPTransport) sessionForAddr(addr net.Addr) (uint64, *peerSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for peerID, sess := range s.sessions {
		if sess.addr.String() == addr.String() {
			return peerID, sess, true
		}
	}
	if sess, ok := s.pending[addr.String()]; ok {
		return 0, sess, true
	}
	return 0, nil, false
}

// handleHandshake advances one step of a peer's Noise_XX handshake.
// Noise_XX is three messages (-> e; <- e, ee, s, es; -> s, se), so which
// step an inbound packet represents depends on whether we recognize the
// sender yet and, if so, which role we're playing:
//
//   - unrecognized address: this is message 1. We become the responder,
//     read it, and write message 2 in reply. No cipher states yet.
//   - recognized initiator session: this is message 2. We read it and
//     write message 3, which completes the handshake on our side.
//   - recognized responder session: this is message 3. We read it and
//     have nothing further to send; the handshake completes here.
func (s *SecureUDPTransport) handleHandshake(packet *Packet, addr net.Addr) error {
	_, sess, ok := s.sessionForAddr(addr)
	if !ok {
		config := noise.Config{
			CipherSuite:   s.cipherSuite(),
			Random:        rand.Reader,
			Pattern:       noise.HandshakeXX,
			Initiator:     false,
			StaticKeypair: s.staticKey,
		}
		hs, err := noise.NewHandshakeState(config)
		if err != nil {
			return fmt.Errorf("transport: new responder handshake state: %w", err)
		}
		sess = &peerSession{addr: addr, handshake: hs, isInitiator: false}
		s.mu.Lock()
		s.pending[addr.String()] = sess
		s.mu.Unlock()

		sess.mu.Lock()
		defer sess.mu.Unlock()

		if _, _, _, err := sess.handshake.ReadMessage(nil, packet.Data); err != nil {
			return fmt.Errorf("transport: read handshake message 1: %w", err)
		}
		reply, _, _, err := sess.handshake.WriteMessage(nil, nil)
		if err != nil {
			return fmt.Errorf("transport: write handshake message 2: %w", err)
		}
		return s.udp.SendPacket(&Packet{PacketType: PacketNoiseHandshake, Data: reply}, addr)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.isInitiator {
		if _, _, _, err := sess.handshake.ReadMessage(nil, packet.Data); err != nil {
			return fmt.Errorf("transport: read handshake message 2: %w", err)
		}
		reply, send, recv, err := sess.handshake.WriteMessage(nil, nil)
		if err != nil {
			return fmt.Errorf("transport: write handshake message 3: %w", err)
		}
		sess.send, sess.recv, sess.ready = send, recv, true
		return s.udp.SendPacket(&Packet{PacketType: PacketNoiseHandshake, Data: reply}, addr)
	}

	// flynn/noise always returns the pair as (initiator->responder
	// cipher, responder->initiator cipher) regardless of which side
	// calls ReadMessage/WriteMessage, so the responder's send/recv are
	// the reverse of the initiator's.
	_, cs1, cs2, err := sess.handshake.ReadMessage(nil, packet.Data)
	if err != nil {
		return fmt.Errorf("transport: read handshake message 3: %w", err)
	}
	sess.send, sess.recv, sess.ready = cs2, cs1, true
	return nil
}

// handleMessage decrypts an inbound PacketNoiseMessage and hands the
// plaintext batch bytes to whatever RegisterHandler call the caller made
// for PacketMessagingBatch.
func (s *SecureUDPTransport) handleMessage(packet *Packet, addr net.Addr) error {
	_, sess, ok := s.sessionForAddr(addr)
	if !ok || !sess.ready {
		return fmt.Errorf("transport: no ready session for %s", addr)
	}

	sess.mu.Lock()
	plaintext, err := sess.recv.Decrypt(nil, nil, packet.Data)
	sess.mu.Unlock()
	if err != nil {
		return fmt.Errorf("transport: decrypt message: %w", err)
	}

	if s.appHandler == nil {
		return nil
	}
	return s.appHandler(&Packet{PacketType: PacketMessagingBatch, Data: plaintext}, addr)
}

// RegisterHandler wires the application's PacketMessagingBatch handler.
// Handshake and Noise message framing are handled internally and are not
// exposed to callers.
func (s *SecureUDPTransport) RegisterHandler(packetType PacketType, handler PacketHandler) {
	if packetType == PacketMessagingBatch {
		s.appHandler = handler
		return
	}
	s.udp.RegisterHandler(packetType, handler)
}

// Send implements messaging.Sender by encrypting the batch and wrapping
// it in a PacketNoiseMessage envelope. If the peer's handshake has not
// completed yet, the batch is dropped and logged rather than buffered,
// so a slow handshake never grows unbounded backlog.
func (s *SecureUDPTransport) Send(peerID uint64, delivery messaging.DeliveryClass, w *messaging.BufferWriter) error {
	s.mu.RLock()
	sess, ok := s.sessions[peerID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: peer %d", ErrPeerUnknown, peerID)
	}

	sess.mu.Lock()
	ready, addr := sess.ready, sess.addr
	var ciphertext []byte
	var err error
	if ready {
		ciphertext, err = sess.send.Encrypt(nil, nil, w.Bytes())
	}
	sess.mu.Unlock()

	if !ready {
		s.log.WithField("peer_id", peerID).Warn("dropping batch: handshake not complete")
		return fmt.Errorf("transport: handshake not complete for peer %d", peerID)
	}
	if err != nil {
		return fmt.Errorf("transport: encrypt message: %w", err)
	}

	return s.udp.SendPacket(&Packet{PacketType: PacketNoiseMessage, Data: ciphertext}, addr)
}

// Close shuts down the underlying UDP transport.
func (s *SecureUDPTransport) Close() error { return s.udp.Close() }

// LocalAddr returns the local address the transport is listening on.
func (s *SecureUDPTransport) LocalAddr() net.Addr { return s.udp.LocalAddr() }
