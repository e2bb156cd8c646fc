package kvstore

import "testing"

func TestMemoryStoreGetSet(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Set("a", []byte("1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "1" {
		t.Fatalf("expected '1', got %q", v)
	}
	if _, err := s.Get("missing"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryStoreBulkGet(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Set("a", []byte("1"))
	_ = s.Set("b", []byte("2"))
	got, err := s.BulkGet([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BulkGet: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 found keys, got %d", len(got))
	}
}

func TestMemoryStoreRangeGetAndRemoveAll(t *testing.T) {
	s := NewMemoryStore()
	for _, k := range []string{"a1", "a2", "a3", "b1"} {
		_ = s.Set(k, []byte(k))
	}
	got, err := s.RangeGet("a", "b")
	if err != nil {
		t.Fatalf("RangeGet: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 keys in range, got %d", len(got))
	}

	n, err := s.RemoveAll("a", "b")
	if err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected to remove 3 keys, got %d", n)
	}
	if _, err := s.Get("b1"); err != nil {
		t.Fatalf("expected b1 to survive RemoveAll, got %v", err)
	}
}

func TestMemoryStoreStats(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Set("a", []byte("123"))
	_ = s.Set("b", []byte("45"))
	stats := s.Stats()
	if stats.Keys != 2 || stats.Bytes != 5 {
		t.Fatalf("expected {Keys:2 Bytes:5}, got %+v", stats)
	}
}
