package transport

import (
	"net"
	"sync"
	"testing"
	"time"
)

// pairedConns returns two ends of an in-memory connection, standing in for
// a dialed TCP socket pair in tests.
func pairedConns(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	return a, b
}

func TestTcpTransportSendFlushReceive(t *testing.T) {
	a, b := pairedConns(t)
	defer a.Close()
	defer b.Close()

	t0 := NewTcpTransport(0, []net.Conn{nil, a})
	t1 := NewTcpTransport(1, []net.Conn{b, nil})
	defer t0.Close()
	defer t1.Close()

	var mu sync.Mutex
	var got []byte
	done := make(chan struct{})
	t1.RegisterReceiver(func(from Rank, payload []byte) {
		mu.Lock()
		got = payload
		mu.Unlock()
		close(done)
	})

	if err := t0.Send(1, []byte("ping")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	go func() {
		_ = t0.Flush()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("receiver never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if string(got) != "ping" {
		t.Fatalf("expected payload 'ping', got %q", got)
	}
}

func TestTcpTransportRejectsSelfSend(t *testing.T) {
	tr := NewTcpTransport(0, []net.Conn{nil})
	defer tr.Close()
	if err := tr.Send(0, []byte("x")); err == nil {
		t.Fatal("expected error sending to self")
	}
}

func TestTcpTransportHasEfficientSendTrue(t *testing.T) {
	tr := NewTcpTransport(0, []net.Conn{nil})
	defer tr.Close()
	if !tr.HasEfficientSend() {
		t.Error("expected TcpTransport to report an efficient send path")
	}
}
