package graphvalue

import "github.com/pkg/errors"

// Tag identifies which variant a Value currently holds. Tag numbering is
// part of the wire contract (codec.Writer/Reader tagged-union framing) and
// must stay stable across versions.
type Tag uint8

const (
	// TagVidI64 holds a VertexId-shaped 64-bit value.
	TagVidI64 Tag = iota
	// TagIntI64 holds a signed 64-bit integer.
	TagIntI64
	// TagDoubleF64 holds a 64-bit float.
	TagDoubleF64
	// TagString holds a UTF-8 string.
	TagString
	// TagBlob holds an opaque byte sequence.
	TagBlob
	// TagDoubleVec holds an ordered sequence of float64.
	TagDoubleVec
)

// ErrDeltaOnNonNumeric is returned when a caller attempts a delta-commit set
// on a String/Blob/DoubleVec value; only VidI64/IntI64/DoubleF64 support it.
var ErrDeltaOnNonNumeric = errors.New("graphvalue: delta commit is only valid for numeric types")

// ErrWrongTag is returned when a Set* method is called against a Value
// whose Tag does not match.
var ErrWrongTag = errors.New("graphvalue: value tag mismatch")

// Value is a single field's stored value: a tagged scalar plus the
// null/delta-commit/modified bookkeeping needed to track in-place updates.
// The zero Value is a non-null VidI64 holding 0.
type Value struct {
	bytes          []byte
	vec            []float64
	i64            int64
	f64            float64
	old            int64 // pre-modification snapshot for numeric delta-commit
	oldF           float64
	tag            Tag
	null           bool
	modified       bool
	useDeltaCommit bool
}

func numeric(tag Tag) bool {
	return tag == TagVidI64 || tag == TagIntI64 || tag == TagDoubleF64
}

// NewNull returns a null value of the given tag, the default state of every
// newly-appended schema field.
func NewNull(tag Tag) Value {
	return Value{tag: tag, null: true}
}

// NewVidI64 returns a non-null VidI64 value.
func NewVidI64(v uint64) Value {
	return Value{tag: TagVidI64, i64: int64(v)}
}

// NewIntI64 returns a non-null IntI64 value.
func NewIntI64(v int64) Value {
	return Value{tag: TagIntI64, i64: v}
}

// NewDoubleF64 returns a non-null DoubleF64 value.
func NewDoubleF64(v float64) Value {
	return Value{tag: TagDoubleF64, f64: v}
}

// NewString returns a non-null String value.
func NewString(v string) Value {
	return Value{tag: TagString, bytes: []byte(v)}
}

// NewBlob returns a non-null Blob value.
func NewBlob(v []byte) Value {
	b := make([]byte, len(v))
	copy(b, v)
	return Value{tag: TagBlob, bytes: b}
}

// NewDoubleVec returns a non-null DoubleVec value.
func NewDoubleVec(v []float64) Value {
	c := make([]float64, len(v))
	copy(c, v)
	return Value{tag: TagDoubleVec, vec: c}
}

// Tag reports which variant this value holds.
func (v Value) Tag() Tag { return v.tag }

// IsNull reports whether this value is the semantic NULL, distinct from
// the variant's default zero value.
func (v Value) IsNull() bool { return v.null }

// Modified reports whether a Set* call has touched this value since it was
// last committed (see Commit).
func (v Value) Modified() bool { return v.modified }

// UseDeltaCommit reports whether numeric sets on this value should be
// applied as additive deltas rather than absolute replacement.
func (v Value) UseDeltaCommit() bool { return v.useDeltaCommit }

// SetUseDeltaCommit toggles delta-commit mode. Only valid for numeric tags;
// returns ErrDeltaOnNonNumeric otherwise.
func (v *Value) SetUseDeltaCommit(enable bool) error {
	if enable && !numeric(v.tag) {
		return ErrDeltaOnNonNumeric
	}
	v.useDeltaCommit = enable
	return nil
}

// Int64 returns the stored VidI64/IntI64 payload. The bool result is false
// if the value is null or not an integer-tagged variant.
func (v Value) Int64() (int64, bool) {
	if v.null || (v.tag != TagVidI64 && v.tag != TagIntI64) {
		return 0, false
	}
	return v.i64, true
}

// Float64 returns the stored DoubleF64 payload. The bool result is false if
// the value is null or not DoubleF64.
func (v Value) Float64() (float64, bool) {
	if v.null || v.tag != TagDoubleF64 {
		return 0, false
	}
	return v.f64, true
}

// String returns the stored String payload. The bool result is false if the
// value is null or not a String.
func (v Value) String() (string, bool) {
	if v.null || v.tag != TagString {
		return "", false
	}
	return string(v.bytes), true
}

// Blob returns the stored Blob payload. The bool result is false if the
// value is null or not a Blob.
func (v Value) Blob() ([]byte, bool) {
	if v.null || v.tag != TagBlob {
		return nil, false
	}
	out := make([]byte, len(v.bytes))
	copy(out, v.bytes)
	return out, true
}

// DoubleVec returns the stored DoubleVec payload. The bool result is false
// if the value is null or not a DoubleVec.
func (v Value) DoubleVec() ([]float64, bool) {
	if v.null || v.tag != TagDoubleVec {
		return nil, false
	}
	out := make([]float64, len(v.vec))
	copy(out, v.vec)
	return out, true
}

// SetInt64 sets a VidI64/IntI64 value. When delta is true the write adds to
// the current value instead of replacing it.
func (v *Value) SetInt64(val int64, delta bool) error {
	if v.tag != TagVidI64 && v.tag != TagIntI64 {
		return ErrWrongTag
	}
	if delta {
		v.i64 += val
	} else {
		v.old = v.i64
		v.i64 = val
	}
	v.null = false
	v.modified = true
	return nil
}

// SetFloat64 sets a DoubleF64 value, with the same delta semantics as
// SetInt64.
func (v *Value) SetFloat64(val float64, delta bool) error {
	if v.tag != TagDoubleF64 {
		return ErrWrongTag
	}
	if delta {
		v.f64 += val
	} else {
		v.oldF = v.f64
		v.f64 = val
	}
	v.null = false
	v.modified = true
	return nil
}

// SetString replaces a String value. delta must be false; non-numeric types
// reject delta commits.
func (v *Value) SetString(val string, delta bool) error {
	if v.tag != TagString {
		return ErrWrongTag
	}
	if delta {
		return ErrDeltaOnNonNumeric
	}
	v.bytes = []byte(val)
	v.null = false
	v.modified = true
	return nil
}

// SetBlob replaces a Blob value. delta must be false.
func (v *Value) SetBlob(val []byte, delta bool) error {
	if v.tag != TagBlob {
		return ErrWrongTag
	}
	if delta {
		return ErrDeltaOnNonNumeric
	}
	b := make([]byte, len(val))
	copy(b, val)
	v.bytes = b
	v.null = false
	v.modified = true
	return nil
}

// SetDoubleVec replaces a DoubleVec value. delta must be false.
func (v *Value) SetDoubleVec(val []float64, delta bool) error {
	if v.tag != TagDoubleVec {
		return ErrWrongTag
	}
	if delta {
		return ErrDeltaOnNonNumeric
	}
	c := make([]float64, len(val))
	copy(c, val)
	v.vec = c
	v.null = false
	v.modified = true
	return nil
}

// SetNull clears the value back to the semantic NULL state for its tag.
func (v *Value) SetNull() {
	v.null = true
	v.modified = true
}

// Commit clears the Modified flag and snapshots the current numeric value
// as the new delta-commit baseline. No code path in this module calls it.
func (v *Value) Commit() {
	v.modified = false
	v.old = v.i64
	v.oldF = v.f64
}
