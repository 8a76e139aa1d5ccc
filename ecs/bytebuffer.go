package ecs

import (
	"bytes"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// ByteBuffer is a growable block of raw bytes holding packed component values.
// The buffer itself has no notion of types: callers decide which offsets hold
// which values. Schema keeps a layout record so entities never read an offset
// as a type other than the one written there.
type ByteBuffer struct {
	data []byte
}

// NewByteBuffer creates an empty buffer with room for capacity bytes.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{data: make([]byte, 0, capacity)}
}

// BufferOf creates a buffer holding exactly the bytes of v.
func BufferOf[T any](v T) *ByteBuffer {
	b := NewByteBuffer(int(unsafe.Sizeof(v)))
	Add(b, v)
	return b
}

// Len returns the number of bytes in the buffer.
func (b *ByteBuffer) Len() int {
	return len(b.data)
}

// Bytes returns the underlying bytes. The slice aliases the buffer.
func (b *ByteBuffer) Bytes() []byte {
	return b.data
}

// Resize grows or shrinks the buffer to n bytes, keeping the first min(old, n)
// bytes and zeroing any new ones.
func (b *ByteBuffer) Resize(n int) {
	if n <= len(b.data) {
		b.data = b.data[:n]
		return
	}
	if n <= cap(b.data) {
		old := len(b.data)
		b.data = b.data[:n]
		clear(b.data[old:])
		return
	}
	grown := make([]byte, n, max(n, 2*cap(b.data)))
	copy(grown, b.data)
	b.data = grown
}

// Append copies the contents of other to the end of the buffer and returns the
// offset at which they were written.
func (b *ByteBuffer) Append(other *ByteBuffer) int {
	offset := len(b.data)
	if other != nil {
		b.data = append(b.data, other.data...)
	}
	return offset
}

// Sub returns a copy of n bytes starting at offset.
func (b *ByteBuffer) Sub(offset, n int) *ByteBuffer {
	out := NewByteBuffer(n)
	out.data = append(out.data, b.data[offset:offset+n]...)
	return out
}

// Clone returns a deep copy of the buffer.
func (b *ByteBuffer) Clone() *ByteBuffer {
	return &ByteBuffer{data: bytes.Clone(b.data)}
}

// CopyFrom replaces the contents of the buffer with the contents of other.
func (b *ByteBuffer) CopyFrom(other *ByteBuffer) {
	b.data = append(b.data[:0], other.data...)
}

// Equal reports whether both buffers have the same size and identical bytes.
func (b *ByteBuffer) Equal(other *ByteBuffer) bool {
	return bytes.Equal(b.data, other.data)
}

// Compare orders buffers by size first and then by their raw bytes.
func (b *ByteBuffer) Compare(other *ByteBuffer) int {
	if d := len(b.data) - len(other.data); d != 0 {
		if d < 0 {
			return -1
		}
		return 1
	}
	return bytes.Compare(b.data, other.data)
}

// Hash returns a 64-bit hash of the raw bytes.
func (b *ByteBuffer) Hash() uint64 {
	return xxhash.Sum64(b.data)
}

// Fits reports whether a value of type T can be read at offset.
func Fits[T any](b *ByteBuffer, offset int) bool {
	var zero T
	return offset >= 0 && offset+int(unsafe.Sizeof(zero)) <= len(b.data)
}

// Add appends the raw bytes of v and returns the offset they were written at.
func Add[T any](b *ByteBuffer, v T) int {
	offset := len(b.data)
	b.data = append(b.data, rawBytes(&v)...)
	return offset
}

// Load reads a T at offset. The caller guarantees the offset holds a T; an
// offset past the end panics.
func Load[T any](b *ByteBuffer, offset int) T {
	var v T
	dst := rawBytes(&v)
	copy(dst, b.data[offset:offset+len(dst)])
	return v
}

// Store writes v at offset. The caller guarantees the offset holds a T; an
// offset past the end panics.
func Store[T any](b *ByteBuffer, offset int, v T) {
	src := rawBytes(&v)
	copy(b.data[offset:offset+len(src)], src)
}

// LoadSafe reads a T at offset, returning false if it does not fit.
func LoadSafe[T any](b *ByteBuffer, offset int) (T, bool) {
	if !Fits[T](b, offset) {
		var zero T
		return zero, false
	}
	return Load[T](b, offset), true
}

// StoreSafe writes v at offset, returning false if it does not fit.
func StoreSafe[T any](b *ByteBuffer, offset int, v T) bool {
	if !Fits[T](b, offset) {
		return false
	}
	Store(b, offset, v)
	return true
}

func rawBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}
