// Package shardmanager computes the grid sharding constraint that assigns
// vertices and edges to shards.
//
// # Grid sharding constraint
//
// Shards are arranged logically into a q x q grid, where q = sqrt(nshards)
// (nshards must be a perfect square). Shard i's neighbor list is the union
// of its grid row and its grid column, always including itself. This
// guarantees that for any two shards i and j, their joint-neighbor set
// always contains at least one common neighbor shard — the shard an edge
// between a vertex mastered on i and a vertex mastered on j can be assigned
// to without that shard needing to mirror vertices from shards outside its
// own row/column.
//
// # Hashing
//
// Vertex-to-shard and edge-to-candidate-shard assignment both hash through
// github.com/cespare/xxhash/v2 for speed; the specific hash function is not
// part of the wire-visible contract and may change between versions.
package shardmanager
