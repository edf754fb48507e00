package container

// Buffer is a resizable byte region with stable identity: its Bytes()
// slice may be reallocated as it grows, but the Buffer value itself
// (and any ID assigned to it by a caller) stays valid across Append
// calls. Used for accumulating variable-length content (e.g. a symbol's
// external representation, or a rule's RHS) before it is interned.
type Buffer struct {
	buf []byte
}

// NewBuffer creates an empty buffer, optionally pre-sized.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, 0, capacity)}
}

// Append adds p to the end of the buffer and returns the buffer for
// chaining.
func (b *Buffer) Append(p ...byte) *Buffer {
	b.buf = append(b.buf, p...)
	return b
}

// AppendString adds s to the end of the buffer.
func (b *Buffer) AppendString(s string) *Buffer {
	b.buf = append(b.buf, s...)
	return b
}

// Bytes returns the buffer's current content. The returned slice is
// invalidated by the next Append call.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of bytes currently held.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Reset empties the buffer without releasing its backing array.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
}

// Clone returns an independent copy of the buffer's content.
func (b *Buffer) Clone() []byte {
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}
