package transport

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"
)

// TcpTransport is a point-to-point Transport over plain net.Conn
// connections, one persistent connection per peer rank used in both
// directions, flushing with net.Buffers.WriteTo so each peer's pending
// frames go out in a single writev(2) syscall.
type TcpTransport struct {
	self  Rank
	conns []net.Conn // conns[r] is the outbound connection to rank r; nil for self
	bufs  []*destBuffer

	recvMu sync.Mutex
	recv   ReceiveFunc

	barrierMu   sync.Mutex
	barrierCond *sync.Cond
	barrierSeen map[Rank]struct{}
	barrierGen  int

	closeOnce sync.Once
}

// frame layout on the wire: [u32 src rank][u32 payload len][payload].
const tcpFrameHeaderLen = 8

// NewTcpTransport wraps pre-established connections: conns[r] must be a
// live connection to rank r for every r != self, and conns[self] must be
// nil. The caller is responsible for listening and dialing; this
// constructor only takes ownership of already-connected sockets.
func NewTcpTransport(self Rank, conns []net.Conn) *TcpTransport {
	t := &TcpTransport{
		self:        self,
		conns:       conns,
		bufs:        make([]*destBuffer, len(conns)),
		barrierSeen: make(map[Rank]struct{}),
	}
	t.barrierCond = sync.NewCond(&t.barrierMu)
	for i := range t.bufs {
		t.bufs[i] = newDestBuffer()
	}
	for r, c := range conns {
		if c == nil {
			continue
		}
		go t.readLoop(Rank(r), c)
	}
	return t
}

func (t *TcpTransport) readLoop(peer Rank, c net.Conn) {
	header := make([]byte, tcpFrameHeaderLen)
	for {
		if _, err := io.ReadFull(c, header); err != nil {
			return
		}
		src := Rank(binary.LittleEndian.Uint32(header[0:4]))
		n := binary.LittleEndian.Uint32(header[4:8])
		if n == 0 {
			// Zero-length frames are barrier markers, not application
			// messages.
			t.barrierMu.Lock()
			t.barrierSeen[src] = struct{}{}
			t.barrierCond.Broadcast()
			t.barrierMu.Unlock()
			continue
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(c, payload); err != nil {
			return
		}
		t.recvMu.Lock()
		fn := t.recv
		t.recvMu.Unlock()
		if fn != nil {
			fn(src, payload)
		}
		_ = peer
	}
}

func (t *TcpTransport) frame(payload []byte) []byte {
	header := make([]byte, tcpFrameHeaderLen)
	binary.LittleEndian.PutUint32(header[0:4], uint32(t.self))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))
	return header
}

// Send enqueues a copy of payload for dst.
func (t *TcpTransport) Send(dst Rank, payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return t.SendRelinquish(dst, cp)
}

// SendRelinquish enqueues payload for dst without Send's up-front copy; the
// bytes are still appended into the per-destination buffer.
func (t *TcpTransport) SendRelinquish(dst Rank, payload []byte) error {
	if int(dst) < 0 || int(dst) >= len(t.conns) {
		return errors.Errorf("transport: destination rank %d out of range", dst)
	}
	if dst == t.self {
		return errors.New("transport: cannot send to self")
	}
	t.bufs[dst].append(t.frame(payload))
	t.bufs[dst].append(payload)
	return nil
}

// Flush writes every destination's pending frames out via
// net.Buffers.WriteTo, one writev per peer connection.
func (t *TcpTransport) Flush() error {
	for r, conn := range t.conns {
		if conn == nil {
			continue
		}
		pending := t.bufs[r].swap()
		if len(pending) == 0 {
			continue
		}
		buffers := net.Buffers{pending}
		if _, err := buffers.WriteTo(conn); err != nil {
			return errors.Wrapf(err, "transport: flush to rank %d", r)
		}
	}
	return nil
}

// RegisterReceiver installs fn as the message callback.
func (t *TcpTransport) RegisterReceiver(fn ReceiveFunc) {
	t.recvMu.Lock()
	t.recv = fn
	t.recvMu.Unlock()
}

// Barrier implements a simple all-ranks rendezvous over an in-process
// condition variable fed by out-of-band barrier frames sent through the
// same connections (a degenerate case of the all-to-all exchange: every
// rank sends every other rank a zero-length barrier marker, then waits for
// all of them).
func (t *TcpTransport) Barrier(ctx context.Context) error {
	for r := range t.conns {
		if Rank(r) == t.self {
			continue
		}
		if err := t.SendRelinquish(Rank(r), []byte{}); err != nil {
			return err
		}
	}
	if err := t.Flush(); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		t.barrierMu.Lock()
		gen := t.barrierGen
		for len(t.barrierSeen) < t.Size()-1 {
			t.barrierCond.Wait()
			if t.barrierGen != gen {
				break
			}
		}
		t.barrierSeen = make(map[Rank]struct{})
		t.barrierGen++
		t.barrierMu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Size reports cluster membership size.
func (t *TcpTransport) Size() int { return len(t.conns) }

// Rank reports this process's own rank.
func (t *TcpTransport) Rank() Rank { return t.self }

// HasEfficientSend reports true: SendRelinquish skips the extra copy Send
// makes (its bytes are appended once into the per-destination buffer, which
// is itself swapped out rather than copied on Flush).
func (t *TcpTransport) HasEfficientSend() bool { return true }

// Close closes every peer connection. Idempotent.
func (t *TcpTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		for _, c := range t.conns {
			if c == nil {
				continue
			}
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
