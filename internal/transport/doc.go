// Package transport implements the buffered all-to-all messaging fabric
// that shard servers use to exchange ingress traffic and query replies.
//
// # Contract
//
// Transport is the capability every concrete backend implements: Send
// enqueues a message for a destination rank without blocking on network
// I/O; SendRelinquish additionally hands ownership of the message buffer to
// the transport (avoiding a copy for large ingress payloads); Flush forces
// any buffered messages for all destinations out now; RegisterReceiver
// installs the dispatcher callback invoked for each arriving message (there
// is no polling Receive method: the callback is the only way messages are
// delivered, and messages arriving before it is installed are dropped); Barrier blocks
// until every rank has called Barrier; Size and Rank report cluster
// membership; HasEfficientSend reports whether SendRelinquish actually
// avoids a copy for this backend, a capability every implementation must
// report honestly.
//
// # Implementations
//
// TcpTransport is a real point-to-point implementation over net.Conn,
// using net.Buffers.WriteTo (the stdlib's writev(2) path, as used
// elsewhere in the retrieved corpus for scatter-gather socket writes) to
// flush each destination's pending buffer in one syscall per peer.
//
// MpiTransport models a collective double-buffer / epoch-refcount
// all-to-all-v exchange as an in-process goroutine/channel simulation
// rather than a real MPI binding: every rank gets a goroutine and an
// all-to-all-v exchange over Go channels that preserves the same
// buffering, flush, and barrier contract a real MPI binding would. A real
// MPI binding could later be swapped in behind the unchanged Transport
// interface.
package transport
