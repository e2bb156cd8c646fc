package shardmanager

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/pkg/errors"
)

// ErrNotPerfectSquare is returned by New when nshards is not a perfect
// square, the grid constraint's only supported shard count shape.
var ErrNotPerfectSquare = errors.New("shardmanager: shard count must be a perfect square")

// Constraint is an immutable grid sharding constraint over a fixed number
// of shards. The zero value is not usable; construct with New.
type Constraint struct {
	nshards int
	// neighbors[i] is the sorted, deduplicated list of shards sharing a
	// grid row or column with shard i, always including i itself.
	neighbors [][]graphmodel.ShardId
}

// New builds the grid sharding constraint for nshards shards. nshards must
// be a positive perfect square (e.g. 1, 4, 9, 16, 25).
func New(nshards int) (*Constraint, error) {
	if nshards <= 0 {
		return nil, errors.New("shardmanager: nshards must be positive")
	}
	side := int(math.Sqrt(float64(nshards)))
	if side*side != nshards {
		return nil, ErrNotPerfectSquare
	}

	c := &Constraint{
		nshards:   nshards,
		neighbors: make([][]graphmodel.ShardId, nshards),
	}
	for i := 0; i < nshards; i++ {
		seen := make(map[int]struct{}, 2*side)
		seen[i] = struct{}{}

		rowBegin := (i / side) * side
		for j := rowBegin; j < rowBegin+side; j++ {
			seen[j] = struct{}{}
		}

		for j := i % side; j < nshards; j += side {
			seen[j] = struct{}{}
		}

		adj := make([]graphmodel.ShardId, 0, len(seen))
		for j := range seen {
			adj = append(adj, graphmodel.ShardId(j))
		}
		sort.Slice(adj, func(a, b int) bool { return adj[a] < adj[b] })
		c.neighbors[i] = adj
	}
	return c, nil
}

// NumShards reports the shard count the constraint was built for.
func (c *Constraint) NumShards() int { return c.nshards }

// MasterShard returns the deterministic master shard assignment for a
// vertex id.
func (c *Constraint) MasterShard(v graphmodel.VertexId) graphmodel.ShardId {
	return graphmodel.ShardId(hashVertex(v) % uint64(c.nshards))
}

// Neighbors returns the (sorted, self-inclusive) list of shards sharing a
// grid row or column with shard.
func (c *Constraint) Neighbors(shard graphmodel.ShardId) []graphmodel.ShardId {
	out := make([]graphmodel.ShardId, len(c.neighbors[shard]))
	copy(out, c.neighbors[shard])
	return out
}

// JointNeighbors returns the sorted intersection of shardI's and shardJ's
// neighbor lists, computed via a merge-join over the two sorted lists — by
// construction always non-empty.
func (c *Constraint) JointNeighbors(shardI, shardJ graphmodel.ShardId) []graphmodel.ShardId {
	ls1 := c.neighbors[shardI]
	ls2 := c.neighbors[shardJ]
	var out []graphmodel.ShardId
	i, j := 0, 0
	for i < len(ls1) && j < len(ls2) {
		switch {
		case ls1[i] == ls2[j]:
			out = append(out, ls1[i])
			i++
			j++
		case ls1[i] < ls2[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// EdgeShard returns the shard an edge (src, dst) is assigned to: a
// deterministic pick among the joint neighbors of src's and dst's master
// shards.
func (c *Constraint) EdgeShard(src, dst graphmodel.VertexId) graphmodel.ShardId {
	candidates := c.JointNeighbors(c.MasterShard(src), c.MasterShard(dst))
	// Guaranteed non-empty by construction of the grid constraint.
	idx := hashEdge(src, dst) % uint64(len(candidates))
	return candidates[idx]
}

func hashVertex(v graphmodel.VertexId) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return xxhash.Sum64(b[:])
}

func hashEdge(src, dst graphmodel.VertexId) uint64 {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(src))
	binary.LittleEndian.PutUint64(b[8:16], uint64(dst))
	return xxhash.Sum64(b[:])
}
