package shard

import (
	"sync"
	"sync/atomic"

	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/dreamware/graphlab-go/internal/graphvalue"
	"github.com/pkg/errors"
)

// Sentinel errors surfaced by the data plane; internal/shardserver maps
// these onto its stable numeric error taxonomy.
var (
	ErrDuplicateVertex = errors.New("shard: vertex already exists")
	ErrVertexNotFound  = errors.New("shard: vertex not found")
	ErrEdgeNotFound    = errors.New("shard: edge not found")
	ErrFieldNotFound   = errors.New("shard: field not found")
)

// ShardState records whether a shard is serving traffic (active, deleted);
// dynamic rebalancing between states beyond that is out of scope, so only
// the snapshot/reporting half is exercised here. Admin Reset cycles through
// Deleted momentarily around wiping the shard.
type ShardState string

const (
	// ShardStateActive indicates the shard is accepting reads and writes.
	ShardStateActive ShardState = "active"
	// ShardStateDeleted is set transiently by Reset.
	ShardStateDeleted ShardState = "deleted"
)

// vertexRecord is a master vertex entry: its row plus the set of shards
// holding a mirror of it. The mirror set never contains the master's own
// shard id.
type vertexRecord struct {
	row     graphmodel.Row
	mirrors map[graphmodel.ShardId]struct{}
	id      graphmodel.VertexId
}

// edgeRecord is a directed edge owned by this shard.
type edgeRecord struct {
	row graphmodel.Row
	src graphmodel.VertexId
	dst graphmodel.VertexId
}

// OperationStats tracks monotonically increasing per-operation-type
// counters, updated lock-free via sync/atomic.
type OperationStats struct {
	VertexGets uint64
	VertexAdds uint64
	VertexSets uint64
	EdgeGets   uint64
	EdgeAdds   uint64
	EdgeSets   uint64
	AdjLookups uint64
}

// Info is a point-in-time snapshot of shard metadata for admin/monitoring
// surfaces.
type Info struct {
	ID          graphmodel.ShardId
	State       ShardState
	NumVertices int
	NumEdges    int
}

// Shard owns a contiguous subset of the graph's vertices and edges. The
// zero value is not usable; construct with New.
type Shard struct {
	VertexSchema *graphmodel.Schema
	EdgeSchema   *graphmodel.Schema

	mu    sync.RWMutex
	state ShardState

	id graphmodel.ShardId

	vertices    []vertexRecord
	vertexIndex map[graphmodel.VertexId]int

	edges  []edgeRecord
	fwdAdj map[graphmodel.VertexId][]int // src -> outgoing edge positions
	revAdj map[graphmodel.VertexId][]int // dst -> incoming edge positions

	stats OperationStats
}

// New creates an empty shard with fresh vertex/edge schemas.
func New(id graphmodel.ShardId) *Shard {
	return &Shard{
		id:           id,
		state:        ShardStateActive,
		VertexSchema: graphmodel.NewSchema(),
		EdgeSchema:   graphmodel.NewSchema(),
		vertexIndex:  make(map[graphmodel.VertexId]int),
		fwdAdj:       make(map[graphmodel.VertexId][]int),
		revAdj:       make(map[graphmodel.VertexId][]int),
	}
}

// ID returns the shard's identifier.
func (s *Shard) ID() graphmodel.ShardId { return s.id }

// Info returns a snapshot of shard metadata.
func (s *Shard) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Info{
		ID:          s.id,
		State:       s.state,
		NumVertices: len(s.vertices),
		NumEdges:    len(s.edges),
	}
}

// Stats returns a consistent snapshot of operation counters.
func (s *Shard) Stats() OperationStats {
	return OperationStats{
		VertexGets: atomic.LoadUint64(&s.stats.VertexGets),
		VertexAdds: atomic.LoadUint64(&s.stats.VertexAdds),
		VertexSets: atomic.LoadUint64(&s.stats.VertexSets),
		EdgeGets:   atomic.LoadUint64(&s.stats.EdgeGets),
		EdgeAdds:   atomic.LoadUint64(&s.stats.EdgeAdds),
		EdgeSets:   atomic.LoadUint64(&s.stats.EdgeSets),
		AdjLookups: atomic.LoadUint64(&s.stats.AdjLookups),
	}
}

// AddVertex inserts a new master vertex row. If a vertex with this id is
// already present and its row is all-NULL, the row is overwritten in place
// and AddVertex succeeds; otherwise it returns ErrDuplicateVertex.
func (s *Shard) AddVertex(id graphmodel.VertexId, row graphmodel.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddUint64(&s.stats.VertexAdds, 1)

	if pos, ok := s.vertexIndex[id]; ok {
		existing := &s.vertices[pos]
		if !existing.row.AllNull() {
			return ErrDuplicateVertex
		}
		existing.row = row.Clone()
		return nil
	}

	s.vertices = append(s.vertices, vertexRecord{id: id, row: row.Clone(), mirrors: make(map[graphmodel.ShardId]struct{})})
	s.vertexIndex[id] = len(s.vertices) - 1
	return nil
}

// GetVertex returns a copy of the master row for id.
func (s *Shard) GetVertex(id graphmodel.VertexId) (graphmodel.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atomic.AddUint64(&s.stats.VertexGets, 1)
	pos, ok := s.vertexIndex[id]
	if !ok {
		return graphmodel.Row{}, ErrVertexNotFound
	}
	return s.vertices[pos].row.Clone(), nil
}

// SetVertexField applies a mutation to one field of vertex id's row. The
// mutation itself (absolute set vs. delta) is expressed by apply via the
// graphvalue.Value API.
func (s *Shard) SetVertexField(id graphmodel.VertexId, field graphmodel.FieldId, apply func(*graphvalue.Value) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddUint64(&s.stats.VertexSets, 1)
	pos, ok := s.vertexIndex[id]
	if !ok {
		return ErrVertexNotFound
	}
	row := &s.vertices[pos].row
	if int(field) >= len(row.Fields) {
		return ErrFieldNotFound
	}
	return apply(&row.Fields[field])
}

// AddVertexMirror records that shard m holds a mirror of vertex v, whose
// master is this shard. A no-op if m equals this shard's own id. If v is
// not yet present, an empty vertex is inserted first.
func (s *Shard) AddVertexMirror(v graphmodel.VertexId, m graphmodel.ShardId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m == s.id {
		return nil
	}
	pos, ok := s.vertexIndex[v]
	if !ok {
		row := graphmodel.NewRowForSchema(s.VertexSchema, true)
		s.vertices = append(s.vertices, vertexRecord{id: v, row: row, mirrors: make(map[graphmodel.ShardId]struct{})})
		pos = len(s.vertices) - 1
		s.vertexIndex[v] = pos
	}
	s.vertices[pos].mirrors[m] = struct{}{}
	return nil
}

// VertexMirrors returns the set of shards mirroring vertex v, excluding its
// own master shard.
func (s *Shard) VertexMirrors(v graphmodel.VertexId) ([]graphmodel.ShardId, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.vertexIndex[v]
	if !ok {
		return nil, ErrVertexNotFound
	}
	out := make([]graphmodel.ShardId, 0, len(s.vertices[pos].mirrors))
	for m := range s.vertices[pos].mirrors {
		out = append(out, m)
	}
	return out, nil
}

// AddEdge appends a new directed edge (src, dst) and updates the
// forward/reverse adjacency indexes. The returned LocalEdgeId is this
// shard's local position, to be packed into a graphmodel.EdgeId by the
// caller.
func (s *Shard) AddEdge(src, dst graphmodel.VertexId, row graphmodel.Row) graphmodel.LocalEdgeId {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddUint64(&s.stats.EdgeAdds, 1)

	pos := len(s.edges)
	s.edges = append(s.edges, edgeRecord{src: src, dst: dst, row: row.Clone()})
	s.fwdAdj[src] = append(s.fwdAdj[src], pos)
	s.revAdj[dst] = append(s.revAdj[dst], pos)
	return graphmodel.LocalEdgeId(pos)
}

// GetEdge returns a copy of the (src, dst, row) stored at local edge
// position local.
func (s *Shard) GetEdge(local graphmodel.LocalEdgeId) (graphmodel.VertexId, graphmodel.VertexId, graphmodel.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atomic.AddUint64(&s.stats.EdgeGets, 1)
	if int(local) >= len(s.edges) {
		return 0, 0, graphmodel.Row{}, ErrEdgeNotFound
	}
	e := s.edges[local]
	return e.src, e.dst, e.row.Clone(), nil
}

// SetEdgeField applies a mutation to one field of an edge's row.
func (s *Shard) SetEdgeField(local graphmodel.LocalEdgeId, field graphmodel.FieldId, apply func(*graphvalue.Value) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddUint64(&s.stats.EdgeSets, 1)
	if int(local) >= len(s.edges) {
		return ErrEdgeNotFound
	}
	row := &s.edges[local].row
	if int(field) >= len(row.Fields) {
		return ErrFieldNotFound
	}
	return apply(&row.Fields[field])
}

// AdjDirection selects incoming or outgoing adjacency.
type AdjDirection int

const (
	// AdjOutgoing returns edges where the queried vertex is the source.
	AdjOutgoing AdjDirection = iota
	// AdjIncoming returns edges where the queried vertex is the destination.
	AdjIncoming
)

// GetAdjacency returns two parallel sequences, peer vertex ids and their
// matching local edge ids, in insertion order for the requested direction.
func (s *Shard) GetAdjacency(v graphmodel.VertexId, dir AdjDirection) ([]graphmodel.VertexId, []graphmodel.LocalEdgeId) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atomic.AddUint64(&s.stats.AdjLookups, 1)

	var positions []int
	if dir == AdjOutgoing {
		positions = s.fwdAdj[v]
	} else {
		positions = s.revAdj[v]
	}
	peers := make([]graphmodel.VertexId, 0, len(positions))
	locals := make([]graphmodel.LocalEdgeId, 0, len(positions))
	for _, pos := range positions {
		e := s.edges[pos]
		locals = append(locals, graphmodel.LocalEdgeId(pos))
		if dir == AdjOutgoing {
			peers = append(peers, e.dst)
		} else {
			peers = append(peers, e.src)
		}
	}
	return peers, locals
}

// NumVertices returns the number of master vertices held by this shard.
func (s *Shard) NumVertices() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vertices)
}

// NumEdges returns the number of edges held by this shard.
func (s *Shard) NumEdges() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// AddVertexField appends a new field to the shared vertex schema and a
// matching NULL field to every existing vertex row. Returns
// graphmodel.ErrFieldExists if the name is already defined.
func (s *Shard) AddVertexField(def graphmodel.FieldDef) (graphmodel.FieldId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.VertexSchema.AddField(def)
	if err != nil {
		return 0, err
	}
	for i := range s.vertices {
		s.vertices[i].row.AppendNullField(def.Type)
	}
	return id, nil
}

// AddEdgeField appends a new field to the shared edge schema and a
// matching NULL field to every existing edge row.
func (s *Shard) AddEdgeField(def graphmodel.FieldDef) (graphmodel.FieldId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.EdgeSchema.AddField(def)
	if err != nil {
		return 0, err
	}
	for i := range s.edges {
		s.edges[i].row.AppendNullField(def.Type)
	}
	return id, nil
}

// Reset wipes the shard back to its empty state; schemas are retained.
func (s *Shard) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ShardStateDeleted
	s.vertices = nil
	s.vertexIndex = make(map[graphmodel.VertexId]int)
	s.edges = nil
	s.fwdAdj = make(map[graphmodel.VertexId][]int)
	s.revAdj = make(map[graphmodel.VertexId][]int)
	s.stats = OperationStats{}
	s.state = ShardStateActive
}
