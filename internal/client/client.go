package client

import (
	"context"
	"sync"

	"github.com/dreamware/graphlab-go/internal/codec"
	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/dreamware/graphlab-go/internal/graphvalue"
	"github.com/dreamware/graphlab-go/internal/shardmanager"
	"github.com/dreamware/graphlab-go/internal/shardserver"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Client is the graph database's query-object collaborator: it resolves
// vertex and edge ids to their owning shard via a shardmanager.Constraint
// and issues requests over a ShardConn per shard.
type Client struct {
	constraint *shardmanager.Constraint

	mu    sync.RWMutex
	conns map[graphmodel.ShardId]ShardConn
}

// New builds a Client over conns, one ShardConn per shard id in
// [0, constraint.NumShards()).
func New(constraint *shardmanager.Constraint, conns map[graphmodel.ShardId]ShardConn) *Client {
	return &Client{constraint: constraint, conns: conns}
}

func (c *Client) connFor(shard graphmodel.ShardId) (ShardConn, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.conns[shard]
	if !ok {
		return nil, errors.Wrapf(ErrServerUnreachable, "no connection registered for shard %d", shard)
	}
	return conn, nil
}

func (c *Client) call(ctx context.Context, shard graphmodel.ShardId, cmd shardserver.Cmd, obj shardserver.Obj, body *codec.Writer) (*codec.Reader, error) {
	conn, err := c.connFor(shard)
	if err != nil {
		return nil, err
	}
	reply, err := conn.Call(ctx, shardserver.MessageID(cmd, obj), body.Bytes())
	if err != nil {
		return nil, err
	}
	return codec.NewReader(reply), nil
}

func readCode(r *codec.Reader) (shardserver.ErrorCode, error) {
	v, err := r.ReadUint32()
	return shardserver.ErrorCode(v), err
}

// AddVertex inserts row at vid on its master shard.
func (c *Client) AddVertex(ctx context.Context, vid graphmodel.VertexId, row graphmodel.Row) error {
	shard := c.constraint.MasterShard(vid)
	w := codec.NewWriter(64)
	w.PutUint64(uint64(vid))
	encodeRow(w, row)
	r, err := c.call(ctx, shard, shardserver.CmdAdd, shardserver.ObjVertex, w)
	if err != nil {
		return err
	}
	code, err := readCode(r)
	if err != nil {
		return err
	}
	return errorFromCode(code)
}

// GetVertex fetches vid's row from its master shard.
func (c *Client) GetVertex(ctx context.Context, vid graphmodel.VertexId) (graphmodel.Row, error) {
	shard := c.constraint.MasterShard(vid)
	w := codec.NewWriter(8)
	w.PutUint64(uint64(vid))
	r, err := c.call(ctx, shard, shardserver.CmdGet, shardserver.ObjVertex, w)
	if err != nil {
		return graphmodel.Row{}, err
	}
	code, err := readCode(r)
	if err != nil {
		return graphmodel.Row{}, err
	}
	if err := errorFromCode(code); err != nil {
		return graphmodel.Row{}, err
	}
	return decodeRow(r)
}

// SetVertexField applies newVal onto vid's fieldID, committing as a delta
// when delta is true.
func (c *Client) SetVertexField(ctx context.Context, vid graphmodel.VertexId, fieldID graphmodel.FieldId, newVal graphvalue.Value, delta bool) error {
	shard := c.constraint.MasterShard(vid)
	w := codec.NewWriter(32)
	w.PutUint64(uint64(vid))
	w.PutUint16(uint16(fieldID))
	w.PutBool(delta)
	graphvalue.Encode(w, newVal)
	r, err := c.call(ctx, shard, shardserver.CmdSetField, shardserver.ObjVertex, w)
	if err != nil {
		return err
	}
	code, err := readCode(r)
	if err != nil {
		return err
	}
	return errorFromCode(code)
}

// AddVertexMirror records that vid has a mirror copy on mirrorShard.
func (c *Client) AddVertexMirror(ctx context.Context, vid graphmodel.VertexId, mirrorShard graphmodel.ShardId) error {
	masterShard := c.constraint.MasterShard(vid)
	w := codec.NewWriter(16)
	w.PutUint64(uint64(vid))
	w.PutUint16(uint16(mirrorShard))
	r, err := c.call(ctx, masterShard, shardserver.CmdAddMirror, shardserver.ObjVertex, w)
	if err != nil {
		return err
	}
	code, err := readCode(r)
	if err != nil {
		return err
	}
	return errorFromCode(code)
}

// AddEdge inserts an edge from src to dst on its joint-neighbor shard,
// returning the cluster-wide id it was assigned.
func (c *Client) AddEdge(ctx context.Context, src, dst graphmodel.VertexId, row graphmodel.Row) (graphmodel.EdgeId, error) {
	shard := c.constraint.EdgeShard(src, dst)
	w := codec.NewWriter(64)
	w.PutUint64(uint64(src))
	w.PutUint64(uint64(dst))
	encodeRow(w, row)
	r, err := c.call(ctx, shard, shardserver.CmdAdd, shardserver.ObjEdge, w)
	if err != nil {
		return 0, err
	}
	code, err := readCode(r)
	if err != nil {
		return 0, err
	}
	if err := errorFromCode(code); err != nil {
		return 0, err
	}
	local, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return graphmodel.MakeEdgeId(shard, graphmodel.LocalEdgeId(local)), nil
}

// GetEdge fetches eid's endpoints and row, routing to the shard packed
// into eid.
func (c *Client) GetEdge(ctx context.Context, eid graphmodel.EdgeId) (graphmodel.VertexId, graphmodel.VertexId, graphmodel.Row, error) {
	shard, local := graphmodel.SplitEdgeId(eid)
	w := codec.NewWriter(8)
	w.PutUint32(uint32(local))
	r, err := c.call(ctx, shard, shardserver.CmdGet, shardserver.ObjEdge, w)
	if err != nil {
		return 0, 0, graphmodel.Row{}, err
	}
	code, err := readCode(r)
	if err != nil {
		return 0, 0, graphmodel.Row{}, err
	}
	if err := errorFromCode(code); err != nil {
		return 0, 0, graphmodel.Row{}, err
	}
	src, err := r.ReadUint64()
	if err != nil {
		return 0, 0, graphmodel.Row{}, err
	}
	dst, err := r.ReadUint64()
	if err != nil {
		return 0, 0, graphmodel.Row{}, err
	}
	row, err := decodeRow(r)
	if err != nil {
		return 0, 0, graphmodel.Row{}, err
	}
	return graphmodel.VertexId(src), graphmodel.VertexId(dst), row, nil
}

// SetEdgeField applies newVal onto eid's fieldID, routing to the shard
// packed into eid.
func (c *Client) SetEdgeField(ctx context.Context, eid graphmodel.EdgeId, fieldID graphmodel.FieldId, newVal graphvalue.Value, delta bool) error {
	shard, local := graphmodel.SplitEdgeId(eid)
	w := codec.NewWriter(32)
	w.PutUint32(uint32(local))
	w.PutUint16(uint16(fieldID))
	w.PutBool(delta)
	graphvalue.Encode(w, newVal)
	r, err := c.call(ctx, shard, shardserver.CmdSetField, shardserver.ObjEdge, w)
	if err != nil {
		return err
	}
	code, err := readCode(r)
	if err != nil {
		return err
	}
	return errorFromCode(code)
}

// GetVertexAdjacency fetches vid's neighbor vertex ids and incident global
// edge ids in the requested direction. Since an edge incident to vid may
// have been routed to any joint-neighbor shard of vid's master (not just
// the master itself), this fans out to master(vid) ∪ neighbors(master(vid))
// and concatenates results, tolerating a per-shard INVALID_ID from a shard
// that holds no adjacency for vid.
func (c *Client) GetVertexAdjacency(ctx context.Context, vid graphmodel.VertexId, incoming bool) ([]graphmodel.VertexId, []graphmodel.EdgeId, error) {
	master := c.constraint.MasterShard(vid)
	shards := c.constraint.Neighbors(master)

	type shardResult struct {
		peers []graphmodel.VertexId
		edges []graphmodel.EdgeId
	}
	results := make([]shardResult, len(shards))
	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			w := codec.NewWriter(16)
			w.PutUint64(uint64(vid))
			if incoming {
				w.PutUint8(1)
			} else {
				w.PutUint8(0)
			}
			r, err := c.call(gctx, shard, shardserver.CmdGetAdjacency, shardserver.ObjVertex, w)
			if err != nil {
				return err
			}
			code, err := readCode(r)
			if err != nil {
				return err
			}
			if cerr := errorFromCode(code); cerr != nil {
				if cerr == ErrInvalidID {
					return nil
				}
				return cerr
			}
			n, err := r.ReadUint64()
			if err != nil {
				return err
			}
			peers := make([]graphmodel.VertexId, n)
			edges := make([]graphmodel.EdgeId, n)
			for j := uint64(0); j < n; j++ {
				p, err := r.ReadUint64()
				if err != nil {
					return err
				}
				l, err := r.ReadUint32()
				if err != nil {
					return err
				}
				peers[j] = graphmodel.VertexId(p)
				edges[j] = graphmodel.MakeEdgeId(shard, graphmodel.LocalEdgeId(l))
			}
			results[i] = shardResult{peers: peers, edges: edges}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var peers []graphmodel.VertexId
	var edges []graphmodel.EdgeId
	for _, res := range results {
		peers = append(peers, res.peers...)
		edges = append(edges, res.edges...)
	}
	return peers, edges, nil
}

// NumVertices broadcasts a count request to every shard and sums the
// replies.
func (c *Client) NumVertices(ctx context.Context) (uint64, error) {
	return c.sumAll(ctx, shardserver.ObjVertex)
}

// NumEdges is NumVertices' edge counterpart.
func (c *Client) NumEdges(ctx context.Context) (uint64, error) {
	return c.sumAll(ctx, shardserver.ObjEdge)
}

func (c *Client) sumAll(ctx context.Context, obj shardserver.Obj) (uint64, error) {
	c.mu.RLock()
	shards := make([]graphmodel.ShardId, 0, len(c.conns))
	for s := range c.conns {
		shards = append(shards, s)
	}
	c.mu.RUnlock()

	counts := make([]uint64, len(shards))
	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			r, err := c.call(gctx, shard, shardserver.CmdNumObjects, obj, codec.NewWriter(0))
			if err != nil {
				return err
			}
			code, err := readCode(r)
			if err != nil {
				return err
			}
			if err := errorFromCode(code); err != nil {
				return err
			}
			n, err := r.ReadUint64()
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	var total uint64
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// Reset broadcasts an admin reset to every shard, clearing all vertices
// and edges; each shard keeps its field schemas.
func (c *Client) Reset(ctx context.Context) error {
	c.mu.RLock()
	shards := make([]graphmodel.ShardId, 0, len(c.conns))
	for s := range c.conns {
		shards = append(shards, s)
	}
	c.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, shard := range shards {
		shard := shard
		g.Go(func() error {
			r, err := c.call(gctx, shard, shardserver.CmdReset, shardserver.ObjNone, codec.NewWriter(0))
			if err != nil {
				return err
			}
			code, err := readCode(r)
			if err != nil {
				return err
			}
			return errorFromCode(code)
		})
	}
	return g.Wait()
}

// AddVertexField applies a schema change to every shard in parallel, since
// field schemas are collective state: every shard must agree on the same
// FieldId for a field before any row is written against it. Returns the
// common FieldId, or an error if any shard failed or the shards disagreed
// on the assigned id.
func (c *Client) AddVertexField(ctx context.Context, def graphmodel.FieldDef) (graphmodel.FieldId, error) {
	return c.addFieldAll(ctx, shardserver.ObjVertex, def)
}

// AddEdgeField is AddVertexField's edge-schema counterpart.
func (c *Client) AddEdgeField(ctx context.Context, def graphmodel.FieldDef) (graphmodel.FieldId, error) {
	return c.addFieldAll(ctx, shardserver.ObjEdge, def)
}

func (c *Client) addFieldAll(ctx context.Context, obj shardserver.Obj, def graphmodel.FieldDef) (graphmodel.FieldId, error) {
	c.mu.RLock()
	shards := make([]graphmodel.ShardId, 0, len(c.conns))
	for s := range c.conns {
		shards = append(shards, s)
	}
	c.mu.RUnlock()

	results := make([]graphmodel.FieldId, len(shards))
	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			w := codec.NewWriter(32)
			w.PutString(def.Name)
			w.PutUint8(uint8(def.Type))
			w.PutBool(def.Indexed)
			r, err := c.call(gctx, shard, shardserver.CmdAddField, obj, w)
			if err != nil {
				return err
			}
			code, err := readCode(r)
			if err != nil {
				return err
			}
			if err := errorFromCode(code); err != nil {
				return err
			}
			id, err := r.ReadUint16()
			if err != nil {
				return err
			}
			results[i] = graphmodel.FieldId(id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	for _, id := range results {
		if id != results[0] {
			return 0, errors.New("client: shards disagreed on assigned field id")
		}
	}
	return results[0], nil
}
