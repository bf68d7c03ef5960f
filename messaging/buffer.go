package messaging

import "fmt"

// BufferWriter is a fixed-capacity, append-only byte writer with an
// explicit cursor. It grows up to a hard ceiling and supports seeking
// back to an earlier position to back-patch a fixed-size record (used by
// the outbound path to write the BatchHeader after payloads are known).
//
// BufferWriter is single-threaded and non-reentrant: it must not be
// shared across goroutines without external synchronization.
type BufferWriter struct {
	buf      []byte
	pos      int
	ceiling  int
	reserved int // bytes reserved by the most recent TryBeginWrite, not yet consumed
}

// NewBufferWriter allocates a writer with the given initial capacity and
// a hard growth ceiling. initial must be <= ceiling.
func NewBufferWriter(initial, ceiling int) *BufferWriter {
	if initial > ceiling {
		initial = ceiling
	}
	return &BufferWriter{
		buf:     make([]byte, initial),
		ceiling: ceiling,
	}
}

// Position returns the writer's current cursor.
func (w *BufferWriter) Position() int { return w.pos }

// Ceiling returns the writer's hard growth ceiling.
func (w *BufferWriter) Ceiling() int { return w.ceiling }

// Remaining returns how many more bytes may be written before the
// ceiling is reached.
func (w *BufferWriter) Remaining() int { return w.ceiling - w.pos }

// Bytes returns the written prefix of the backing buffer. The slice
// aliases the writer's internal storage and must not be retained past
// the writer's next mutation.
func (w *BufferWriter) Bytes() []byte { return w.buf[:w.pos] }

// TryBeginWrite reserves n bytes ahead of the cursor, growing the
// backing slice if necessary. It fails if doing so would exceed the
// ceiling.
func (w *BufferWriter) TryBeginWrite(n int) error {
	if w.pos+n > w.ceiling {
		return fmt.Errorf("%w: need %d bytes, %d remain to ceiling %d", ErrPayloadTooLarge, n, w.Remaining(), w.ceiling)
	}
	if w.pos+n > len(w.buf) {
		grown := make([]byte, w.pos+n)
		copy(grown, w.buf[:w.pos])
		w.buf = grown
	}
	w.reserved = n
	return nil
}

// WriteBytes appends b, which must fit within the most recent
// TryBeginWrite reservation.
func (w *BufferWriter) WriteBytes(b []byte) {
	copy(w.buf[w.pos:w.pos+len(b)], b)
	w.pos += len(b)
	w.reserved -= len(b)
}

// WriteUint8 appends a single byte.
func (w *BufferWriter) WriteUint8(v uint8) {
	w.buf[w.pos] = v
	w.pos++
	w.reserved--
}

// WriteUint16 appends v in the platform's native byte order.
func (w *BufferWriter) WriteUint16(v uint16) {
	nativeEndian.PutUint16(w.buf[w.pos:w.pos+2], v)
	w.pos += 2
	w.reserved -= 2
}

// WriteUint32 appends v in the platform's native byte order.
func (w *BufferWriter) WriteUint32(v uint32) {
	nativeEndian.PutUint32(w.buf[w.pos:w.pos+4], v)
	w.pos += 4
	w.reserved -= 4
}

// Seek moves the cursor to an absolute position without touching
// reservation bookkeeping. Used to back-patch a header once payloads are
// known. pos must be <= the writer's current length.
func (w *BufferWriter) Seek(pos int) {
	w.pos = pos
}

// Reset rewinds the writer to an empty state while keeping its backing
// allocation, so the writer can be pooled and reused for a new batch.
func (w *BufferWriter) Reset() {
	w.pos = 0
	w.reserved = 0
}

// BufferReader is a random-access byte reader over a range with an
// explicit cursor. It has two modes: borrowing (the backing memory is
// owned elsewhere and the reader must not outlive the source) and
// owning (the reader copies on construction and owns its storage).
//
// BufferReader is single-threaded and non-reentrant.
type BufferReader struct {
	buf     []byte
	pos     int
	owning  bool
	released bool
}

// NewBorrowingReader wraps b without copying. The caller must guarantee
// b outlives the reader.
func NewBorrowingReader(b []byte) *BufferReader {
	return &BufferReader{buf: b}
}

// NewOwningReader copies n bytes starting at off from b into a freshly
// allocated buffer the reader owns.
func NewOwningReader(b []byte, off, n int) *BufferReader {
	owned := make([]byte, n)
	copy(owned, b[off:off+n])
	return &BufferReader{buf: owned, owning: true}
}

// Len returns the total number of bytes in the reader's range.
func (r *BufferReader) Len() int { return len(r.buf) }

// Position returns the reader's current cursor.
func (r *BufferReader) Position() int { return r.pos }

// Remaining returns how many bytes remain unread.
func (r *BufferReader) Remaining() int { return len(r.buf) - r.pos }

// TryBeginRead verifies that n bytes remain from the cursor.
func (r *BufferReader) TryBeginRead(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, %d remain", ErrShortBuffer, n, r.Remaining())
	}
	return nil
}

// ReadUint8 decodes a single byte at the cursor and advances it.
func (r *BufferReader) ReadUint8() uint8 {
	v := r.buf[r.pos]
	r.pos++
	return v
}

// ReadUint16 decodes a 16-bit value in the platform's native byte order
// at the cursor and advances it.
func (r *BufferReader) ReadUint16() uint16 {
	v := nativeEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v
}

// ReadUint32 decodes a 32-bit value in the platform's native byte order
// at the cursor and advances it.
func (r *BufferReader) ReadUint32() uint32 {
	v := nativeEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v
}

// ReadBytes returns the next n bytes and advances the cursor. The
// returned slice aliases the reader's backing storage.
func (r *BufferReader) ReadBytes(n int) []byte {
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

// PeekRemaining returns a slice over every unread byte without advancing
// the cursor, for handing off a raw payload range to an owning copy.
func (r *BufferReader) PeekRemaining() []byte {
	return r.buf[r.pos:]
}

// Advance moves the cursor forward n bytes without reading, used after a
// payload has been copied elsewhere.
func (r *BufferReader) Advance(n int) { r.pos += n }

// Release marks an owning reader as disposed. Releasing a borrowing
// reader is a no-op. Release is idempotent and exists so the cleanup
// invariant (every owning reader allocated by the core is released) is
// mechanically checkable in tests; Go's garbage collector does not
// require it for correctness.
func (r *BufferReader) Release() {
	if !r.owning {
		return
	}
	r.released = true
}

// Released reports whether Release has been called. Exposed for tests
// that assert the cleanup invariant.
func (r *BufferReader) Released() bool { return r.released }
