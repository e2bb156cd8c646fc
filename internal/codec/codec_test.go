package codec

import "testing"

func TestScalarRoundTrip(t *testing.T) {
	w := NewWriter(64)
	w.PutUint8(7)
	w.PutUint16(1234)
	w.PutUint32(987654)
	w.PutUint64(1 << 40)
	w.PutInt32(-5)
	w.PutInt64(-1 << 40)
	w.PutFloat64(3.25)
	w.PutBool(true)
	w.PutBool(false)
	w.PutString("hello")
	w.PutFloat64Slice([]float64{1, 2, 3.5})

	r := NewReader(w.Bytes())
	if v, err := r.ReadUint8(); err != nil || v != 7 {
		t.Fatalf("ReadUint8 = %d, %v", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 1234 {
		t.Fatalf("ReadUint16 = %d, %v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 987654 {
		t.Fatalf("ReadUint32 = %d, %v", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 1<<40 {
		t.Fatalf("ReadUint64 = %d, %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -5 {
		t.Fatalf("ReadInt32 = %d, %v", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != -1<<40 {
		t.Fatalf("ReadInt64 = %d, %v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != 3.25 {
		t.Fatalf("ReadFloat64 = %f, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v != true {
		t.Fatalf("ReadBool(1) = %v, %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v != false {
		t.Fatalf("ReadBool(2) = %v, %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "hello" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
	fs, err := r.ReadFloat64Slice()
	if err != nil {
		t.Fatalf("ReadFloat64Slice: %v", err)
	}
	if len(fs) != 3 || fs[0] != 1 || fs[1] != 2 || fs[2] != 3.5 {
		t.Fatalf("ReadFloat64Slice = %v", fs)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected reader fully drained, %d bytes left", r.Remaining())
	}
}

func TestReadPastEndIsShortBuffer(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.ReadUint64(); err == nil {
		t.Fatal("expected short buffer error")
	}
}

func TestBytesRoundTripEmpty(t *testing.T) {
	w := NewWriter(8)
	w.PutBytes(nil)
	r := NewReader(w.Bytes())
	b, err := r.ReadBytes()
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if len(b) != 0 {
		t.Fatalf("expected empty slice, got %v", b)
	}
}
