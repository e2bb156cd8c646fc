package client

import (
	"context"

	"github.com/dreamware/graphlab-go/internal/codec"
	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/dreamware/graphlab-go/internal/shardserver"
	"golang.org/x/sync/errgroup"
)

// VertexInsert pairs a vertex id with the row to insert at it.
type VertexInsert struct {
	Id  graphmodel.VertexId
	Row graphmodel.Row
}

// EdgeInsert pairs an edge's endpoints with the row to insert on it.
type EdgeInsert struct {
	Src, Dst graphmodel.VertexId
	Row      graphmodel.Row
}

// EdgeInsertResult is one element of AddEdges' per-position reply.
type EdgeInsertResult struct {
	Id  graphmodel.EdgeId
	Err error
}

// AddVertices groups vertices by destination shard (the Master shard of
// each vertex id), issues one batch RPC per non-empty shard, and maps
// each shard's reply back onto the caller's original index order.
func (c *Client) AddVertices(ctx context.Context, vertices []VertexInsert) ([]error, error) {
	byShard := make(map[graphmodel.ShardId][]int)
	for i, v := range vertices {
		shard := c.constraint.MasterShard(v.Id)
		byShard[shard] = append(byShard[shard], i)
	}

	errs := make([]error, len(vertices))
	g, gctx := errgroup.WithContext(ctx)
	for shard, idxs := range byShard {
		shard, idxs := shard, idxs
		g.Go(func() error {
			w := codec.NewWriter(64 * len(idxs))
			w.PutUint64(uint64(len(idxs)))
			for _, i := range idxs {
				w.PutUint64(uint64(vertices[i].Id))
				encodeRow(w, vertices[i].Row)
			}
			r, err := c.call(gctx, shard, shardserver.CmdBatchAdd, shardserver.ObjVertex, w)
			if err != nil {
				for _, i := range idxs {
					errs[i] = err
				}
				return nil
			}
			if _, err := readCode(r); err != nil {
				return err
			}
			n, err := r.ReadUint64()
			if err != nil {
				return err
			}
			for j := uint64(0); j < n && int(j) < len(idxs); j++ {
				code, err := readCode(r)
				if err != nil {
					return err
				}
				errs[idxs[j]] = errorFromCode(code)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return errs, nil
}

// AddEdges groups edges by their joint-neighbor shard, issues one batch
// RPC per non-empty shard, and maps each shard's reply back onto the
// caller's original index order. At most NumShards() RPCs are issued
// regardless of batch size.
func (c *Client) AddEdges(ctx context.Context, edges []EdgeInsert) ([]EdgeInsertResult, error) {
	byShard := make(map[graphmodel.ShardId][]int)
	for i, e := range edges {
		shard := c.constraint.EdgeShard(e.Src, e.Dst)
		byShard[shard] = append(byShard[shard], i)
	}

	results := make([]EdgeInsertResult, len(edges))
	g, gctx := errgroup.WithContext(ctx)
	for shard, idxs := range byShard {
		shard, idxs := shard, idxs
		g.Go(func() error {
			w := codec.NewWriter(64 * len(idxs))
			w.PutUint64(uint64(len(idxs)))
			for _, i := range idxs {
				w.PutUint64(uint64(edges[i].Src))
				w.PutUint64(uint64(edges[i].Dst))
				encodeRow(w, edges[i].Row)
			}
			r, err := c.call(gctx, shard, shardserver.CmdBatchAdd, shardserver.ObjEdge, w)
			if err != nil {
				for _, i := range idxs {
					results[i] = EdgeInsertResult{Err: err}
				}
				return nil
			}
			if _, err := readCode(r); err != nil {
				return err
			}
			n, err := r.ReadUint64()
			if err != nil {
				return err
			}
			for j := uint64(0); j < n && int(j) < len(idxs); j++ {
				code, err := readCode(r)
				if err != nil {
					return err
				}
				if cerr := errorFromCode(code); cerr != nil {
					results[idxs[j]] = EdgeInsertResult{Err: cerr}
					continue
				}
				local, err := r.ReadUint32()
				if err != nil {
					return err
				}
				results[idxs[j]] = EdgeInsertResult{Id: graphmodel.MakeEdgeId(shard, graphmodel.LocalEdgeId(local))}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetVertices is AddVertices' batch-read counterpart.
func (c *Client) GetVertices(ctx context.Context, ids []graphmodel.VertexId) ([]graphmodel.Row, []error, error) {
	byShard := make(map[graphmodel.ShardId][]int)
	for i, id := range ids {
		shard := c.constraint.MasterShard(id)
		byShard[shard] = append(byShard[shard], i)
	}

	rows := make([]graphmodel.Row, len(ids))
	errs := make([]error, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	for shard, idxs := range byShard {
		shard, idxs := shard, idxs
		g.Go(func() error {
			w := codec.NewWriter(8 * len(idxs))
			w.PutUint64(uint64(len(idxs)))
			for _, i := range idxs {
				w.PutUint64(uint64(ids[i]))
			}
			r, err := c.call(ctx, shard, shardserver.CmdBatchGet, shardserver.ObjVertex, w)
			if err != nil {
				for _, i := range idxs {
					errs[i] = err
				}
				return nil
			}
			if _, err := readCode(r); err != nil {
				return err
			}
			n, err := r.ReadUint64()
			if err != nil {
				return err
			}
			for j := uint64(0); j < n && int(j) < len(idxs); j++ {
				code, err := readCode(r)
				if err != nil {
					return err
				}
				if cerr := errorFromCode(code); cerr != nil {
					errs[idxs[j]] = cerr
					continue
				}
				row, err := decodeRow(r)
				if err != nil {
					return err
				}
				rows[idxs[j]] = row
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rows, errs, nil
}
