package transport

import "context"

// Rank identifies one participant (one shard-server process) in the
// cluster's all-to-all fabric.
type Rank int

// ReceiveFunc is invoked once per arriving message, on a transport-owned
// goroutine. Implementations must not block for long inside it — hand the
// payload to internal/rpc's Dispatcher and return.
type ReceiveFunc func(from Rank, payload []byte)

// Transport is the capability both MpiTransport and TcpTransport
// implement.
type Transport interface {
	// Send enqueues payload for delivery to dst. payload is copied;
	// the caller retains ownership and may reuse it immediately.
	Send(dst Rank, payload []byte) error

	// SendRelinquish enqueues payload for delivery to dst without copying
	// it: the callee takes ownership and the caller must not touch
	// payload again. Implementations that cannot avoid a copy (HasEfficientSend
	// == false) fall back to copying internally.
	SendRelinquish(dst Rank, payload []byte) error

	// Flush forces all messages buffered for every destination out now,
	// blocking until they have been handed to the network layer.
	Flush() error

	// RegisterReceiver installs the callback invoked for each message
	// addressed to this rank. Must be called before Flush/Barrier.
	RegisterReceiver(fn ReceiveFunc)

	// Barrier blocks until every rank in the cluster has called Barrier.
	Barrier(ctx context.Context) error

	// Size reports the number of ranks in the cluster.
	Size() int

	// Rank reports this process's own rank.
	Rank() Rank

	// HasEfficientSend reports whether SendRelinquish actually avoids a
	// buffer copy on this backend.
	HasEfficientSend() bool

	// Close releases transport resources. Idempotent.
	Close() error
}
