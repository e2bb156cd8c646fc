// Package shard implements the fundamental storage unit of the graph
// database: a Shard owning a contiguous subset of master vertices and
// directed edges, plus the forward/reverse adjacency indexes linking them.
//
// # Overview
//
// A Shard is the atomic unit of data distribution in the cluster. Each
// shard owns the master copy of a subset of vertices (determined by
// internal/shardmanager's grid sharding constraint) and every edge whose
// own master assignment landed on this shard. Shards grow monotonically:
// edges are never removed during the server's lifetime, and a vertex is
// only ever overwritten (when the existing row is all-NULL) or rejected as
// DUPLICATE.
//
// # Data owned per shard
//
//	┌─────────────────────────────────────────────┐
//	│                  SHARD                       │
//	├───────────────────────────────────────────────┤
//	│ vertices  []  (VertexId, Row, mirror set)      │
//	│ edges     []  (src VertexId, dst VertexId, Row)│
//	│ fwdAdj    VertexId -> []edge position (outgoing)│
//	│ revAdj    VertexId -> []edge position (incoming)│
//	│ vertexSchema, edgeSchema  (shared, add-only)    │
//	└───────────────────────────────────────────────┘
//
// # Concurrency model
//
// Reads never lock beyond the shard's single coarse mutex; writes serialize
// with reads on the same shard by that same mutex. There is no batch write
// method: a batch request takes the mutex once per row. Operation counters
// are updated with sync/atomic so Stats never blocks a concurrent mutation.
//
// # Lifecycle
//
// A Shard is created empty at process startup and grows until an admin
// Reset wipes it back to empty (schemas retained). There is no persistence:
// the shard server is in-memory for the lifetime of the process.
package shard
