package transport

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// mpiMessage is one buffered frame destined for a peer rank within an
// MpiGroup.
type mpiMessage struct {
	from    Rank
	payload []byte
}

// MpiGroup is the shared coordination point for every MpiTransport in a
// simulated cluster — the in-process stand-in for an MPI communicator.
// Build one MpiGroup and call NewTransport once per rank.
type MpiGroup struct {
	size int

	mu      sync.Mutex
	inboxes []chan mpiMessage

	barrierMu    sync.Mutex
	barrierCond  *sync.Cond
	barrierCount int
	barrierGen   int
}

// NewMpiGroup creates a group of size ranks, each with its own inbox
// channel, modeling the collective all-to-all-v exchange's per-rank
// receive buffers.
func NewMpiGroup(size int) *MpiGroup {
	g := &MpiGroup{
		size:    size,
		inboxes: make([]chan mpiMessage, size),
	}
	g.barrierCond = sync.NewCond(&g.barrierMu)
	for i := range g.inboxes {
		g.inboxes[i] = make(chan mpiMessage, 1024)
	}
	return g
}

// NewTransport returns the Transport handle for rank within this group.
func (g *MpiGroup) NewTransport(rank Rank) *MpiTransport {
	t := &MpiTransport{
		group: g,
		self:  rank,
		bufs:  make([]*destBuffer, g.size),
		done:  make(chan struct{}),
	}
	for i := range t.bufs {
		t.bufs[i] = newDestBuffer()
	}
	go t.deliverLoop()
	return t
}

// MpiTransport is a Transport implementation that simulates an MPI
// collective all-to-all-v exchange using goroutines and channels rather
// than a real MPI binding (see package doc for why).
type MpiTransport struct {
	group *MpiGroup
	self  Rank

	bufs []*destBuffer

	recvMu sync.Mutex
	recv   ReceiveFunc

	done chan struct{}
}

func (t *MpiTransport) deliverLoop() {
	inbox := t.group.inboxes[t.self]
	for {
		select {
		case msg := <-inbox:
			t.recvMu.Lock()
			fn := t.recv
			t.recvMu.Unlock()
			if fn != nil {
				fn(msg.from, msg.payload)
			}
		case <-t.done:
			return
		}
	}
}

// Send enqueues a copy of payload for dst.
func (t *MpiTransport) Send(dst Rank, payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	return t.SendRelinquish(dst, cp)
}

// SendRelinquish buffers payload for dst; MpiTransport has no efficient
// zero-copy path (HasEfficientSend is false), so it is functionally
// identical to Send but documented separately to satisfy the Transport
// contract.
func (t *MpiTransport) SendRelinquish(dst Rank, payload []byte) error {
	if int(dst) < 0 || int(dst) >= t.group.size {
		return errors.Errorf("transport: destination rank %d out of range", dst)
	}
	if dst == t.self {
		return errors.New("transport: cannot send to self")
	}
	t.bufs[dst].append(payload)
	return nil
}

// Flush drains every destination's pending buffer into the group's
// all-to-all-v exchange, one message per destination.
func (t *MpiTransport) Flush() error {
	for r := 0; r < t.group.size; r++ {
		if Rank(r) == t.self {
			continue
		}
		pending := t.bufs[r].swap()
		if len(pending) == 0 {
			continue
		}
		t.group.inboxes[r] <- mpiMessage{from: t.self, payload: pending}
	}
	return nil
}

// RegisterReceiver installs fn as the message callback.
func (t *MpiTransport) RegisterReceiver(fn ReceiveFunc) {
	t.recvMu.Lock()
	t.recv = fn
	t.recvMu.Unlock()
}

// Barrier blocks until every rank in the group has called Barrier,
// modeling MPI_Barrier's collective rendezvous. Ranks arriving at
// different generations (one rank calls Barrier twice before a slow peer
// calls it once) are kept apart by barrierGen so a fast rank can't
// trigger a release meant for the next round.
func (t *MpiTransport) Barrier(ctx context.Context) error {
	g := t.group
	done := make(chan struct{})
	go func() {
		g.barrierMu.Lock()
		myGen := g.barrierGen
		g.barrierCount++
		if g.barrierCount == g.size {
			g.barrierCount = 0
			g.barrierGen++
			g.barrierCond.Broadcast()
		} else {
			for g.barrierGen == myGen {
				g.barrierCond.Wait()
			}
		}
		g.barrierMu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Size reports the number of ranks in the simulated group.
func (t *MpiTransport) Size() int { return t.group.size }

// Rank reports this transport's own rank.
func (t *MpiTransport) Rank() Rank { return t.self }

// HasEfficientSend reports false: the simulated collective always copies
// into its own buffer, unlike a real MPI implementation's RMA path.
func (t *MpiTransport) HasEfficientSend() bool { return false }

// Close stops this rank's delivery goroutine. Idempotent.
func (t *MpiTransport) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	return nil
}
