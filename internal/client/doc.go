// Package client implements the graph database's query-object
// collaborator: a connection per shard plus the scatter/gather logic that
// groups a batch of vertex or edge ids by destination shard, fires one
// request per shard, and reassembles per-item results and error codes in
// original order. Batches are grouped by destination graph_shard_id_t,
// issued as one message per shard, and each shard's batch reply is
// unpacked back into the caller's original index order; the per-shard
// fan-out uses golang.org/x/sync/errgroup instead of a serial loop over
// futures, since Go has no blocking future type to hand out eagerly.
//
// Schemas are per-call rather than a single copy shared and cached at
// construction: every Client method takes the row/field values it needs,
// with no cached schema state that could drift from the shard servers'
// authoritative copy.
package client
