package messaging

import "sync"

// pingMessage is a minimal admitted message type used across tests. It
// mirrors the teacher's convention of a small fixed-size payload
// message (a single uint32 nonce).
type pingMessage struct {
	Nonce uint32
}

func (m pingMessage) Serialize(w *BufferWriter) error {
	if err := w.TryBeginWrite(4); err != nil {
		return err
	}
	w.WriteUint32(m.Nonce)
	return nil
}

var receivedPings []pingMessage
var receivedPingsMu sync.Mutex

func resetReceivedPings() {
	receivedPingsMu.Lock()
	receivedPings = nil
	receivedPingsMu.Unlock()
}

func pingReceive(r *BufferReader, ctx *NetworkContext) error {
	if err := r.TryBeginRead(4); err != nil {
		return err
	}
	nonce := r.ReadUint32()
	receivedPingsMu.Lock()
	receivedPings = append(receivedPings, pingMessage{Nonce: nonce})
	receivedPingsMu.Unlock()
	return nil
}

func pingDescriptor() Descriptor {
	return Descriptor{
		Name:         TypeName(pingMessage{}),
		OwnerBinding: Unbound(),
		Receive:      pingReceive,
	}
}

// sizedMessage serializes to an arbitrary fixed-size zero-filled
// payload, used to exercise batch packing and size-split behavior.
type sizedMessage struct {
	Size int
}

func (m sizedMessage) Serialize(w *BufferWriter) error {
	if err := w.TryBeginWrite(m.Size); err != nil {
		return err
	}
	w.WriteBytes(make([]byte, m.Size))
	return nil
}

func sizedReceive(r *BufferReader, ctx *NetworkContext) error {
	return nil
}

func sizedDescriptor() Descriptor {
	return Descriptor{
		Name:         TypeName(sizedMessage{}),
		OwnerBinding: Unbound(),
		Receive:      sizedReceive,
	}
}

// fakeSender records every batch handed to it, keyed by peer, so tests
// can assert on batch count/contents without a real transport.
type fakeSender struct {
	mu      sync.Mutex
	sent    map[uint64][][]byte
	failing bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[uint64][][]byte)}
}

func (s *fakeSender) Send(peerID uint64, delivery DeliveryClass, w *BufferWriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errSendFailed
	}
	blob := make([]byte, len(w.Bytes()))
	copy(blob, w.Bytes())
	s.sent[peerID] = append(s.sent[peerID], blob)
	return nil
}

func (s *fakeSender) batchesFor(peerID uint64) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[peerID]
}

var errSendFailed = errSendFailedErr{}

type errSendFailedErr struct{}

func (errSendFailedErr) Error() string { return "simulated transport failure" }

func newTestCore(descs ...Descriptor) (*Core, *fakeSender, *Registry) {
	catalog := NewCatalog()
	for _, d := range descs {
		catalog.Register(d)
	}
	registry, err := NewRegistry(DefaultOwner{}, catalog)
	if err != nil {
		panic(err)
	}
	sender := newFakeSender()
	return NewCore(registry, sender), sender, registry
}
