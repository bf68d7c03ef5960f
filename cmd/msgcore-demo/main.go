// Command msgcore-demo runs a minimal messaging-core peer: it listens for
// batches, prints every chat message it receives (it does not reply to
// them), and optionally sends one greeting to a peer address given on the
// command line. It exists to exercise the wiring between config, messaging, and
// transport end to end, not as a production server.
package main

import (
	"flag"
	"fmt"
	"net"
	"time"

	"github.com/flynn/noise"
	"github.com/sirupsen/logrus"

	"github.com/coldvane/msgcore/config"
	"github.com/coldvane/msgcore/messaging"
	"github.com/coldvane/msgcore/transport"
)

// chatMessage is the demo's only registered message type: a short UTF-8
// string, sent once as the greeting to the -peer address.
type chatMessage struct {
	Text string
}

func (m chatMessage) Serialize(w *messaging.BufferWriter) error {
	text := []byte(m.Text)
	if err := w.TryBeginWrite(2 + len(text)); err != nil {
		return err
	}
	w.WriteUint16(uint16(len(text)))
	w.WriteBytes(text)
	return nil
}

func chatCatalog() *messaging.Catalog {
	catalog := messaging.NewCatalog()
	catalog.Register(messaging.Descriptor{
		Name:         messaging.TypeName(chatMessage{}),
		OwnerBinding: messaging.Unbound(),
		Receive: func(r *messaging.BufferReader, ctx *messaging.NetworkContext) error {
			if err := r.TryBeginRead(2); err != nil {
				return err
			}
			n := int(r.ReadUint16())
			if err := r.TryBeginRead(n); err != nil {
				return err
			}
			text := make([]byte, n)
			copy(text, r.PeekRemaining()[:n])
			r.Advance(n)

			fmt.Printf("[peer %d] %s\n", ctx.SenderID, string(text))
			return nil
		},
	})
	return catalog
}

func main() {
	configPath := flag.String("config", "", "path to a msgcore YAML config file")
	peerAddr := flag.String("peer", "", "optional host:port of a peer to greet on startup")
	peerID := flag.Uint64("peer-id", 1, "numeric id to assign the -peer address")
	greeting := flag.String("greeting", "hello from msgcore-demo", "text to send -peer on startup")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logrus.WithError(err).Fatal("loading config")
		}
		cfg = loaded
	}
	logrus.SetLevel(cfg.LogrusLevel())

	registry, err := messaging.NewRegistry(nil, chatCatalog())
	if err != nil {
		logrus.WithError(err).Fatal("building message registry")
	}

	var sender messaging.Sender
	var t transport.Transport

	switch cfg.Transport {
	case config.TransportSecureUDP:
		var key noise.DHKey
		var err error
		if cfg.StaticKeyFile != "" {
			key, err = transport.LoadStaticKeypair(cfg.StaticKeyFile)
			if err != nil {
				logrus.WithError(err).Fatal("loading static keypair")
			}
		} else {
			key, err = transport.GenerateStaticKeypair()
			if err != nil {
				logrus.WithError(err).Fatal("generating static keypair")
			}
		}
		secure, err := transport.NewSecureUDPTransport(cfg.ListenAddr, key)
		if err != nil {
			logrus.WithError(err).Fatal("starting secure udp transport")
		}
		sender, t = secure, secure
	default:
		udp, err := transport.NewUDPTransport(cfg.ListenAddr)
		if err != nil {
			logrus.WithError(err).Fatal("starting udp transport")
		}
		sender, t = udp, udp
	}
	defer t.Close()

	core := messaging.NewCore(registry, sender)

	var resolvedPeer net.Addr
	if *peerAddr != "" {
		resolvedPeer, err = net.ResolveUDPAddr("udp", *peerAddr)
		if err != nil {
			logrus.WithError(err).Fatal("resolving -peer")
		}
		switch tr := t.(type) {
		case *transport.UDPTransport:
			tr.RegisterPeer(*peerID, resolvedPeer)
		case *transport.SecureUDPTransport:
			if err := tr.RegisterPeer(*peerID, resolvedPeer); err != nil {
				logrus.WithError(err).Fatal("registering peer for secure handshake")
			}
		}
		core.ClientConnected(*peerID)
	}

	// transport dispatches each inbound packet on its own goroutine, but
	// Core is single-threaded and non-reentrant (see messaging.doc.go);
	// the handler only hands the batch off to inboundBatches, and the
	// single loop below is the only goroutine that ever touches core.
	inboundBatches := make(chan inboundBatch, 64)
	t.RegisterHandler(transport.PacketMessagingBatch, func(p *transport.Packet, addr net.Addr) error {
		batch := inboundBatch{peerID: *peerID, data: p.Data, recvTime: float32(time.Now().Unix())}
		select {
		case inboundBatches <- batch:
		default:
			logrus.WithField("peer_id", batch.peerID).Warn("dropping batch: inbound queue full")
		}
		return nil
	})

	fmt.Printf("msgcore-demo listening on %s (transport=%s)\n", t.LocalAddr(), cfg.Transport)

	if resolvedPeer != nil {
		if err := core.SendMessage(chatMessage{Text: *greeting}, messaging.DeliveryUnreliable, []uint64{*peerID}); err != nil {
			logrus.WithError(err).Error("queuing greeting")
		}
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			core.ProcessSendQueues()
		case batch := <-inboundBatches:
			core.HandleIncomingData(batch.peerID, batch.data, batch.recvTime)
			core.ProcessIncomingMessageQueue()
		}
	}
}

// inboundBatch carries one decoded packet from a transport handler
// goroutine to the single goroutine that drives Core.
type inboundBatch struct {
	peerID   uint64
	data     []byte
	recvTime float32
}
