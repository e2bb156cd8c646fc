package codec

import (
	"encoding/binary"
	"math"
)

// Writer accumulates a single wire payload. It is not safe for concurrent
// use; callers that need concurrent assembly should borrow one Writer per
// in-flight message (see internal/rpc's builder pool).
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with the given initial capacity hint.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Reset clears the writer so its backing array can be reused, matching the
// pool-friendly reuse pattern internal/rpc relies on.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// Bytes returns the accumulated payload. The slice aliases the writer's
// internal buffer and is only valid until the next Reset.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len reports how many bytes have been written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// PutUint8 appends a single byte.
func (w *Writer) PutUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// PutUint16 appends a little-endian u16.
func (w *Writer) PutUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// PutUint32 appends a little-endian u32.
func (w *Writer) PutUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// PutUint64 appends a little-endian u64.
func (w *Writer) PutUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// PutInt32 appends a little-endian signed i32.
func (w *Writer) PutInt32(v int32) {
	w.PutUint32(uint32(v))
}

// PutInt64 appends a little-endian signed i64.
func (w *Writer) PutInt64(v int64) {
	w.PutUint64(uint64(v))
}

// PutFloat64 appends an IEEE-754 little-endian double.
func (w *Writer) PutFloat64(v float64) {
	w.PutUint64(math.Float64bits(v))
}

// PutBool appends a one-byte boolean.
func (w *Writer) PutBool(v bool) {
	if v {
		w.PutUint8(1)
	} else {
		w.PutUint8(0)
	}
}

// PutBytes appends a [u64 length][bytes] byte sequence.
func (w *Writer) PutBytes(b []byte) {
	w.PutUint64(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// PutString appends a string using the PutBytes framing.
func (w *Writer) PutString(s string) {
	w.PutBytes([]byte(s))
}

// PutFloat64Slice appends an ordered sequence of doubles.
func (w *Writer) PutFloat64Slice(v []float64) {
	w.PutUint64(uint64(len(v)))
	for _, f := range v {
		w.PutFloat64(f)
	}
}
