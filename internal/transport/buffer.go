package transport

import (
	"sync"
	"sync/atomic"
)

// destBuffer is a double buffer for one destination rank, indexed by an
// epoch counter. It is not lock-free: append and swap both hold d.mu, so
// an append and a flush's swap never overlap, and the per-slot in-flight
// counters never gate the swap.
type destBuffer struct {
	mu      sync.Mutex
	epoch   uint64
	buf     [2][]byte // indexed by epoch & 1
	inFlite [2]int32  // in-flight appenders per epoch slot
}

func newDestBuffer() *destBuffer {
	return &destBuffer{}
}

// append adds payload to whichever buffer slot is currently active.
func (d *destBuffer) append(payload []byte) {
	d.mu.Lock()
	slot := d.epoch & 1
	atomic.AddInt32(&d.inFlite[slot], 1)
	d.buf[slot] = append(d.buf[slot], payload...)
	atomic.AddInt32(&d.inFlite[slot], -1)
	d.mu.Unlock()
}

// swap bumps the epoch, returning the bytes accumulated in the
// now-retired slot. Drains to zero in-flight writers on that slot before
// returning — under d.mu, appenders can't still be running concurrently
// with a swap, so this is a formality that documents the invariant rather
// than an actual wait.
func (d *destBuffer) swap() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	retiring := d.epoch & 1
	out := d.buf[retiring]
	d.buf[retiring] = nil
	d.epoch++
	return out
}
