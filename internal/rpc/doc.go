// Package rpc implements the message dispatcher shared by the transport and
// shard-server layers: a map of handlers keyed by a 16-bit message id (not a
// fixed-size table), with sync.Pool builder reuse for outgoing messages. Requests are
// identified by a compact binary (cmd, obj) id rather than a free-form
// string tag.
package rpc
