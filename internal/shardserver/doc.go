// Package shardserver implements the request/reply state machine that
// turns wire bytes into shard.Shard operations: ReceiveHeader -> Parse ->
// Apply(shard) -> Reply, with a stable numeric error taxonomy. Requests
// carry a compact binary (cmd, obj) header that internal/rpc's Dispatcher
// demultiplexes on, rather than a free-form string tag.
package shardserver
