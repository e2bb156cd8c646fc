package shardserver

import (
	"github.com/dreamware/graphlab-go/internal/codec"
	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/dreamware/graphlab-go/internal/graphvalue"
	"github.com/dreamware/graphlab-go/internal/rpc"
	"github.com/dreamware/graphlab-go/internal/shard"
)

// Server binds a shard.Shard behind the cmd/obj request protocol,
// registering one rpc.Handler per (Cmd, Obj) pair.
type Server struct {
	Shard      *shard.Shard
	Dispatcher *rpc.Dispatcher
}

// New builds a Server with handlers registered for every supported
// (Cmd, Obj) pair against s. The returned Server's Dispatcher is ready to
// hand to an internal/transport receiver callback.
func New(s *shard.Shard) *Server {
	srv := &Server{Shard: s, Dispatcher: rpc.NewDispatcher(256)}
	srv.registerHandlers()
	return srv
}

func writeHeader(w *codec.Writer, code ErrorCode) {
	w.PutUint32(uint32(code))
}

func (s *Server) registerHandlers() {
	reg := func(cmd Cmd, obj Obj, h rpc.Handler) {
		_ = s.Dispatcher.Register(MessageID(cmd, obj), instrument(cmd, obj, h))
	}

	reg(CmdGet, ObjVertex, s.handleGetVertex)
	reg(CmdAdd, ObjVertex, s.handleAddVertex)
	reg(CmdSetField, ObjVertex, s.handleSetVertexField)
	reg(CmdAddField, ObjVertex, s.handleAddVertexField)
	reg(CmdAddMirror, ObjVertex, s.handleAddVertexMirror)

	reg(CmdGet, ObjEdge, s.handleGetEdge)
	reg(CmdAdd, ObjEdge, s.handleAddEdge)
	reg(CmdSetField, ObjEdge, s.handleSetEdgeField)
	reg(CmdAddField, ObjEdge, s.handleAddEdgeField)

	reg(CmdGetAdjacency, ObjVertex, s.handleGetAdjacency)
	reg(CmdNumObjects, ObjVertex, s.handleNumVertices)
	reg(CmdNumObjects, ObjEdge, s.handleNumEdges)
	reg(CmdReset, ObjNone, s.handleReset)

	reg(CmdBatchAdd, ObjVertex, s.handleBatchAddVertex)
	reg(CmdBatchAdd, ObjEdge, s.handleBatchAddEdge)
	reg(CmdBatchGet, ObjVertex, s.handleBatchGetVertex)
	reg(CmdBatchGet, ObjEdge, s.handleBatchGetEdge)
}

// handleBatchAddVertex and its siblings below reply with a flat sequence of
// per-element (ErrorCode, payload?) pairs rather than a single success flag
// plus a conditionally-present error array: this lets the client map
// results back to input position and surface per-element invalid-id or
// duplicate errors, with a reply shape that never varies with whether
// every element happened to succeed.
func (s *Server) handleBatchAddVertex(body *codec.Reader, w *codec.Writer) error {
	count, err := body.ReadUint64()
	if err != nil {
		return err
	}
	writeHeader(w, OK)
	w.PutUint64(count)
	for i := uint64(0); i < count; i++ {
		vid, err := body.ReadUint64()
		if err != nil {
			return err
		}
		row, err := decodeRow(body)
		if err != nil {
			return err
		}
		aerr := s.Shard.AddVertex(graphmodel.VertexId(vid), row)
		writeHeader(w, FromShardError(aerr))
	}
	return nil
}

func (s *Server) handleBatchAddEdge(body *codec.Reader, w *codec.Writer) error {
	count, err := body.ReadUint64()
	if err != nil {
		return err
	}
	writeHeader(w, OK)
	w.PutUint64(count)
	for i := uint64(0); i < count; i++ {
		src, err := body.ReadUint64()
		if err != nil {
			return err
		}
		dst, err := body.ReadUint64()
		if err != nil {
			return err
		}
		row, err := decodeRow(body)
		if err != nil {
			return err
		}
		local := s.Shard.AddEdge(graphmodel.VertexId(src), graphmodel.VertexId(dst), row)
		writeHeader(w, OK)
		w.PutUint32(uint32(local))
	}
	return nil
}

func (s *Server) handleBatchGetVertex(body *codec.Reader, w *codec.Writer) error {
	count, err := body.ReadUint64()
	if err != nil {
		return err
	}
	writeHeader(w, OK)
	w.PutUint64(count)
	for i := uint64(0); i < count; i++ {
		vid, err := body.ReadUint64()
		if err != nil {
			return err
		}
		row, gerr := s.Shard.GetVertex(graphmodel.VertexId(vid))
		writeHeader(w, FromShardError(gerr))
		if gerr == nil {
			encodeRow(w, row)
		}
	}
	return nil
}

func (s *Server) handleBatchGetEdge(body *codec.Reader, w *codec.Writer) error {
	count, err := body.ReadUint64()
	if err != nil {
		return err
	}
	writeHeader(w, OK)
	w.PutUint64(count)
	for i := uint64(0); i < count; i++ {
		local, err := body.ReadUint32()
		if err != nil {
			return err
		}
		src, dst, row, gerr := s.Shard.GetEdge(graphmodel.LocalEdgeId(local))
		writeHeader(w, FromShardError(gerr))
		if gerr == nil {
			w.PutUint64(uint64(src))
			w.PutUint64(uint64(dst))
			encodeRow(w, row)
		}
	}
	return nil
}

func (s *Server) handleGetVertex(body *codec.Reader, w *codec.Writer) error {
	vid, err := body.ReadUint64()
	if err != nil {
		return err
	}
	row, gerr := s.Shard.GetVertex(graphmodel.VertexId(vid))
	writeHeader(w, FromShardError(gerr))
	if gerr == nil {
		encodeRow(w, row)
	}
	return nil
}

func (s *Server) handleAddVertex(body *codec.Reader, w *codec.Writer) error {
	vid, err := body.ReadUint64()
	if err != nil {
		return err
	}
	row, err := decodeRow(body)
	if err != nil {
		return err
	}
	aerr := s.Shard.AddVertex(graphmodel.VertexId(vid), row)
	writeHeader(w, FromShardError(aerr))
	return nil
}

func (s *Server) handleSetVertexField(body *codec.Reader, w *codec.Writer) error {
	vid, err := body.ReadUint64()
	if err != nil {
		return err
	}
	fieldID, err := body.ReadUint16()
	if err != nil {
		return err
	}
	delta, err := body.ReadBool()
	if err != nil {
		return err
	}
	newVal, err := graphvalue.Decode(body)
	if err != nil {
		return err
	}

	serr := s.Shard.SetVertexField(graphmodel.VertexId(vid), graphmodel.FieldId(fieldID), func(cur *graphvalue.Value) error {
		return applyIncomingValue(cur, newVal, delta)
	})
	writeHeader(w, FromShardError(serr))
	return nil
}

func (s *Server) handleAddVertexField(body *codec.Reader, w *codec.Writer) error {
	name, err := body.ReadString()
	if err != nil {
		return err
	}
	tagByte, err := body.ReadUint8()
	if err != nil {
		return err
	}
	indexed, err := body.ReadBool()
	if err != nil {
		return err
	}
	fieldID, aerr := s.Shard.AddVertexField(graphmodel.FieldDef{Name: name, Type: graphvalue.Tag(tagByte), Indexed: indexed})
	writeHeader(w, FromShardError(aerr))
	if aerr == nil {
		w.PutUint16(uint16(fieldID))
	}
	return nil
}

func (s *Server) handleAddVertexMirror(body *codec.Reader, w *codec.Writer) error {
	vid, err := body.ReadUint64()
	if err != nil {
		return err
	}
	mirrorShard, err := body.ReadUint16()
	if err != nil {
		return err
	}
	aerr := s.Shard.AddVertexMirror(graphmodel.VertexId(vid), graphmodel.ShardId(mirrorShard))
	writeHeader(w, FromShardError(aerr))
	return nil
}

func (s *Server) handleGetEdge(body *codec.Reader, w *codec.Writer) error {
	local, err := body.ReadUint32()
	if err != nil {
		return err
	}
	src, dst, row, gerr := s.Shard.GetEdge(graphmodel.LocalEdgeId(local))
	writeHeader(w, FromShardError(gerr))
	if gerr == nil {
		w.PutUint64(uint64(src))
		w.PutUint64(uint64(dst))
		encodeRow(w, row)
	}
	return nil
}

func (s *Server) handleAddEdge(body *codec.Reader, w *codec.Writer) error {
	src, err := body.ReadUint64()
	if err != nil {
		return err
	}
	dst, err := body.ReadUint64()
	if err != nil {
		return err
	}
	row, err := decodeRow(body)
	if err != nil {
		return err
	}
	local := s.Shard.AddEdge(graphmodel.VertexId(src), graphmodel.VertexId(dst), row)
	writeHeader(w, OK)
	w.PutUint32(uint32(local))
	return nil
}

func (s *Server) handleSetEdgeField(body *codec.Reader, w *codec.Writer) error {
	local, err := body.ReadUint32()
	if err != nil {
		return err
	}
	fieldID, err := body.ReadUint16()
	if err != nil {
		return err
	}
	delta, err := body.ReadBool()
	if err != nil {
		return err
	}
	newVal, err := graphvalue.Decode(body)
	if err != nil {
		return err
	}

	serr := s.Shard.SetEdgeField(graphmodel.LocalEdgeId(local), graphmodel.FieldId(fieldID), func(cur *graphvalue.Value) error {
		return applyIncomingValue(cur, newVal, delta)
	})
	writeHeader(w, FromShardError(serr))
	return nil
}

func (s *Server) handleAddEdgeField(body *codec.Reader, w *codec.Writer) error {
	name, err := body.ReadString()
	if err != nil {
		return err
	}
	tagByte, err := body.ReadUint8()
	if err != nil {
		return err
	}
	indexed, err := body.ReadBool()
	if err != nil {
		return err
	}
	fieldID, aerr := s.Shard.AddEdgeField(graphmodel.FieldDef{Name: name, Type: graphvalue.Tag(tagByte), Indexed: indexed})
	writeHeader(w, FromShardError(aerr))
	if aerr == nil {
		w.PutUint16(uint16(fieldID))
	}
	return nil
}

func (s *Server) handleGetAdjacency(body *codec.Reader, w *codec.Writer) error {
	vid, err := body.ReadUint64()
	if err != nil {
		return err
	}
	dirByte, err := body.ReadUint8()
	if err != nil {
		return err
	}
	dir := shard.AdjOutgoing
	if dirByte == 1 {
		dir = shard.AdjIncoming
	}
	peers, locals := s.Shard.GetAdjacency(graphmodel.VertexId(vid), dir)
	writeHeader(w, OK)
	w.PutUint64(uint64(len(peers)))
	for i, p := range peers {
		w.PutUint64(uint64(p))
		w.PutUint32(uint32(locals[i]))
	}
	return nil
}

func (s *Server) handleNumVertices(body *codec.Reader, w *codec.Writer) error {
	writeHeader(w, OK)
	w.PutUint64(uint64(s.Shard.NumVertices()))
	return nil
}

func (s *Server) handleNumEdges(body *codec.Reader, w *codec.Writer) error {
	writeHeader(w, OK)
	w.PutUint64(uint64(s.Shard.NumEdges()))
	return nil
}

func (s *Server) handleReset(body *codec.Reader, w *codec.Writer) error {
	s.Shard.Reset()
	writeHeader(w, OK)
	return nil
}

// applyIncomingValue applies newVal's payload onto cur, honoring delta
// semantics the same way graphvalue.Value's Set* methods do.
func applyIncomingValue(cur *graphvalue.Value, newVal graphvalue.Value, delta bool) error {
	if newVal.IsNull() {
		cur.SetNull()
		return nil
	}
	switch newVal.Tag() {
	case graphvalue.TagVidI64, graphvalue.TagIntI64:
		v, _ := newVal.Int64()
		return cur.SetInt64(v, delta)
	case graphvalue.TagDoubleF64:
		v, _ := newVal.Float64()
		return cur.SetFloat64(v, delta)
	case graphvalue.TagString:
		v, _ := newVal.String()
		return cur.SetString(v, delta)
	case graphvalue.TagBlob:
		v, _ := newVal.Blob()
		return cur.SetBlob(v, delta)
	case graphvalue.TagDoubleVec:
		v, _ := newVal.DoubleVec()
		return cur.SetDoubleVec(v, delta)
	default:
		return graphvalue.ErrWrongTag
	}
}
