package rpc

import (
	"sync"

	"github.com/dreamware/graphlab-go/internal/codec"
	"github.com/pkg/errors"
)

// MessageID demultiplexes an incoming buffer to a registered Handler: a
// 2-byte message id precedes every request/reply body.
type MessageID uint16

// Handler processes one decoded request body and writes its reply (if any)
// into w. Handlers never block on network I/O themselves; Transport.Send
// is invoked by the caller once the handler returns.
type Handler func(body *codec.Reader, w *codec.Writer) error

// ErrUnknownMessage is returned by Dispatch for an id with no registered
// handler — mapped onto an invalid-command error code by cmd/shardserver.
var ErrUnknownMessage = errors.New("rpc: no handler registered for message id")

// ErrAlreadyRegistered is returned by Register when id already has a
// handler.
var ErrAlreadyRegistered = errors.New("rpc: handler already registered for message id")

// Dispatcher routes decoded request bodies to registered handlers by
// message id. Safe for concurrent Dispatch calls; Register is intended to
// run during setup, single-threaded.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[MessageID]Handler
	builders sync.Pool
}

// NewDispatcher returns an empty dispatcher. builderSizeHint sizes the
// scratch buffers handed out by the builder pool.
func NewDispatcher(builderSizeHint int) *Dispatcher {
	d := &Dispatcher{handlers: make(map[MessageID]Handler)}
	d.builders.New = func() any {
		return codec.NewWriter(builderSizeHint)
	}
	return d
}

// Register installs handler for id. Returns ErrAlreadyRegistered if id is
// already bound.
func (d *Dispatcher) Register(id MessageID, h Handler) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.handlers[id]; exists {
		return ErrAlreadyRegistered
	}
	d.handlers[id] = h
	return nil
}

// Dispatch looks up the handler for id and invokes it with body, writing
// the reply into a pooled *codec.Writer returned to the caller. The caller
// must call Release(w) once the reply bytes have been sent.
func (d *Dispatcher) Dispatch(id MessageID, body *codec.Reader) (*codec.Writer, error) {
	d.mu.RLock()
	h, ok := d.handlers[id]
	d.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownMessage
	}

	w := d.builders.Get().(*codec.Writer)
	w.Reset()
	if err := h(body, w); err != nil {
		d.builders.Put(w)
		return nil, err
	}
	return w, nil
}

// Release returns a builder obtained from Dispatch back to the pool.
func (d *Dispatcher) Release(w *codec.Writer) {
	d.builders.Put(w)
}
