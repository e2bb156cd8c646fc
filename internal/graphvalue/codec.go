package graphvalue

import (
	"github.com/dreamware/graphlab-go/internal/codec"
)

// Encode serializes v as (type_tag, null_flag, use_delta_commit,
// payload_len, payload?). The payload is omitted entirely when the value
// is null.
func Encode(w *codec.Writer, v Value) {
	w.PutUint8(uint8(v.tag))
	w.PutBool(v.null)
	w.PutBool(v.useDeltaCommit)
	if v.null {
		w.PutUint64(0)
		return
	}
	switch v.tag {
	case TagVidI64, TagIntI64:
		w.PutUint64(8)
		w.PutInt64(v.i64)
	case TagDoubleF64:
		w.PutUint64(8)
		w.PutFloat64(v.f64)
	case TagString, TagBlob:
		w.PutUint64(uint64(len(v.bytes)))
		for _, b := range v.bytes {
			w.PutUint8(b)
		}
	case TagDoubleVec:
		w.PutUint64(uint64(len(v.vec)) * 8)
		for _, f := range v.vec {
			w.PutFloat64(f)
		}
	}
}

// Decode reads a value previously written by Encode.
func Decode(r *codec.Reader) (Value, error) {
	tagByte, err := r.ReadUint8()
	if err != nil {
		return Value{}, err
	}
	tag := Tag(tagByte)
	null, err := r.ReadBool()
	if err != nil {
		return Value{}, err
	}
	useDelta, err := r.ReadBool()
	if err != nil {
		return Value{}, err
	}
	payloadLen, err := r.ReadUint64()
	if err != nil {
		return Value{}, err
	}
	v := Value{tag: tag, null: null, useDeltaCommit: useDelta}
	if null {
		return v, nil
	}
	switch tag {
	case TagVidI64, TagIntI64:
		i, err := r.ReadInt64()
		if err != nil {
			return Value{}, err
		}
		v.i64 = i
	case TagDoubleF64:
		f, err := r.ReadFloat64()
		if err != nil {
			return Value{}, err
		}
		v.f64 = f
	case TagString, TagBlob:
		b := make([]byte, payloadLen)
		for i := range b {
			bb, err := r.ReadUint8()
			if err != nil {
				return Value{}, err
			}
			b[i] = bb
		}
		v.bytes = b
	case TagDoubleVec:
		n := payloadLen / 8
		vec := make([]float64, n)
		for i := range vec {
			f, err := r.ReadFloat64()
			if err != nil {
				return Value{}, err
			}
			vec[i] = f
		}
		v.vec = vec
	}
	return v, nil
}
