package codec

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrShortBuffer is returned when a Read* call needs more bytes than remain
// in the reader. Transport-delivered payloads that trip this are a protocol
// error (spec: INVALID_HEADER / INVALID_COMMAND), not a transport failure.
var ErrShortBuffer = errors.New("codec: short buffer")

// Reader consumes a wire payload written by Writer. It is not safe for
// concurrent use.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding. buf is not copied; callers
// must not mutate it while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining reports how many bytes are left to read.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return errors.Wrapf(ErrShortBuffer, "need %d bytes, have %d", n, r.Remaining())
	}
	return nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadUint16 reads a little-endian u16.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadUint32 reads a little-endian u32.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadUint64 reads a little-endian u64.
func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadInt32 reads a little-endian signed i32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadInt64 reads a little-endian signed i64.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat64 reads an IEEE-754 little-endian double.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBool reads a one-byte boolean.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadBytes reads a [u64 length][bytes] byte sequence. The returned slice is
// a copy, safe to retain beyond the Reader's lifetime.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

// ReadString reads a string using the ReadBytes framing.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadFloat64Slice reads an ordered sequence of doubles.
func (r *Reader) ReadFloat64Slice() ([]float64, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i], err = r.ReadFloat64()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
