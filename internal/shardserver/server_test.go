package shardserver

import (
	"testing"

	"github.com/dreamware/graphlab-go/internal/codec"
	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/dreamware/graphlab-go/internal/graphvalue"
	"github.com/dreamware/graphlab-go/internal/shard"
)

func mustDispatch(t *testing.T, srv *Server, cmd Cmd, obj Obj, req *codec.Writer) *codec.Reader {
	t.Helper()
	w, err := srv.Dispatcher.Dispatch(MessageID(cmd, obj), codec.NewReader(req.Bytes()))
	if err != nil {
		t.Fatalf("Dispatch(%d,%d): %v", cmd, obj, err)
	}
	return codec.NewReader(w.Bytes())
}

func readCode(t *testing.T, r *codec.Reader) ErrorCode {
	t.Helper()
	v, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("reading error code: %v", err)
	}
	return ErrorCode(v)
}

func newTestServer() *Server {
	return New(shard.New(graphmodel.ShardId(0)))
}

func TestServerAddAndGetVertex(t *testing.T) {
	srv := newTestServer()

	req := codec.NewWriter(32)
	req.PutUint64(42)
	encodeRow(req, graphmodel.Row{IsVertex: true})
	r := mustDispatch(t, srv, CmdAdd, ObjVertex, req)
	if code := readCode(t, r); code != OK {
		t.Fatalf("add vertex: got code %d, want OK", code)
	}

	req2 := codec.NewWriter(8)
	req2.PutUint64(42)
	r2 := mustDispatch(t, srv, CmdGet, ObjVertex, req2)
	if code := readCode(t, r2); code != OK {
		t.Fatalf("get vertex: got code %d, want OK", code)
	}
	row, err := decodeRow(r2)
	if err != nil {
		t.Fatalf("decodeRow: %v", err)
	}
	if !row.IsVertex {
		t.Fatalf("expected IsVertex true")
	}
}

func TestServerAddVertexDuplicateReturnsErrDuplicate(t *testing.T) {
	srv := newTestServer()
	_, err := srv.Shard.AddVertexField(graphmodel.FieldDef{Name: "weight", Type: graphvalue.TagDoubleF64})
	if err != nil {
		t.Fatalf("AddVertexField: %v", err)
	}

	fieldID, _ := srv.Shard.VertexSchema.FieldByName("weight")

	req := codec.NewWriter(32)
	req.PutUint64(7)
	row := graphmodel.NewRowForSchema(srv.Shard.VertexSchema, true)
	row.Fields[fieldID] = graphvalue.NewDoubleF64(1.5)
	encodeRow(req, row)
	r := mustDispatch(t, srv, CmdAdd, ObjVertex, req)
	if code := readCode(t, r); code != OK {
		t.Fatalf("first add: got code %d, want OK", code)
	}

	req2 := codec.NewWriter(32)
	req2.PutUint64(7)
	encodeRow(req2, row)
	r2 := mustDispatch(t, srv, CmdAdd, ObjVertex, req2)
	if code := readCode(t, r2); code != ErrDuplicate {
		t.Fatalf("second add: got code %d, want ErrDuplicate", code)
	}
}

func TestServerGetUnknownVertexReturnsErrInvalidID(t *testing.T) {
	srv := newTestServer()
	req := codec.NewWriter(8)
	req.PutUint64(999)
	r := mustDispatch(t, srv, CmdGet, ObjVertex, req)
	if code := readCode(t, r); code != ErrInvalidID {
		t.Fatalf("got code %d, want ErrInvalidID", code)
	}
}

func TestServerSetVertexFieldDelta(t *testing.T) {
	srv := newTestServer()
	fieldID, err := srv.Shard.AddVertexField(graphmodel.FieldDef{Name: "score", Type: graphvalue.TagDoubleF64})
	if err != nil {
		t.Fatalf("AddVertexField: %v", err)
	}

	addReq := codec.NewWriter(32)
	addReq.PutUint64(1)
	encodeRow(addReq, graphmodel.NewRowForSchema(srv.Shard.VertexSchema, true))
	mustDispatch(t, srv, CmdAdd, ObjVertex, addReq)

	for i := 0; i < 4; i++ {
		req := codec.NewWriter(32)
		req.PutUint64(1)
		req.PutUint16(uint16(fieldID))
		req.PutBool(true)
		graphvalue.Encode(req, graphvalue.NewDoubleF64(0.25))
		r := mustDispatch(t, srv, CmdSetField, ObjVertex, req)
		if code := readCode(t, r); code != OK {
			t.Fatalf("set field iter %d: got code %d, want OK", i, code)
		}
	}

	row, err := srv.Shard.GetVertex(1)
	if err != nil {
		t.Fatalf("GetVertex: %v", err)
	}
	got, _ := row.Fields[fieldID].Float64()
	if got != 1.0 {
		t.Fatalf("accumulated delta = %v, want 1.0", got)
	}
}

func TestServerAddAndGetEdge(t *testing.T) {
	srv := newTestServer()

	req := codec.NewWriter(32)
	req.PutUint64(1)
	req.PutUint64(2)
	encodeRow(req, graphmodel.Row{IsVertex: false})
	r := mustDispatch(t, srv, CmdAdd, ObjEdge, req)
	if code := readCode(t, r); code != OK {
		t.Fatalf("add edge: got code %d, want OK", code)
	}
	local, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("reading local edge id: %v", err)
	}

	getReq := codec.NewWriter(8)
	getReq.PutUint32(local)
	r2 := mustDispatch(t, srv, CmdGet, ObjEdge, getReq)
	if code := readCode(t, r2); code != OK {
		t.Fatalf("get edge: got code %d, want OK", code)
	}
	src, _ := r2.ReadUint64()
	dst, _ := r2.ReadUint64()
	if src != 1 || dst != 2 {
		t.Fatalf("got edge (%d,%d), want (1,2)", src, dst)
	}
}

func TestServerGetUnknownEdgeReturnsErrInvalidID(t *testing.T) {
	srv := newTestServer()
	req := codec.NewWriter(8)
	req.PutUint32(12345)
	r := mustDispatch(t, srv, CmdGet, ObjEdge, req)
	if code := readCode(t, r); code != ErrInvalidID {
		t.Fatalf("got code %d, want ErrInvalidID", code)
	}
}

func TestServerAddVertexMirror(t *testing.T) {
	srv := newTestServer()

	addReq := codec.NewWriter(32)
	addReq.PutUint64(5)
	encodeRow(addReq, graphmodel.Row{IsVertex: true})
	mustDispatch(t, srv, CmdAdd, ObjVertex, addReq)

	mirrorReq := codec.NewWriter(16)
	mirrorReq.PutUint64(5)
	mirrorReq.PutUint16(3)
	r := mustDispatch(t, srv, CmdAddMirror, ObjVertex, mirrorReq)
	if code := readCode(t, r); code != OK {
		t.Fatalf("add mirror: got code %d, want OK", code)
	}

	mirrors, err := srv.Shard.VertexMirrors(5)
	if err != nil {
		t.Fatalf("VertexMirrors: %v", err)
	}
	if len(mirrors) != 1 || mirrors[0] != 3 {
		t.Fatalf("mirrors = %v, want [3]", mirrors)
	}
}

func TestServerGetAdjacency(t *testing.T) {
	srv := newTestServer()
	for _, id := range []graphmodel.VertexId{1, 2, 3} {
		req := codec.NewWriter(16)
		req.PutUint64(uint64(id))
		encodeRow(req, graphmodel.Row{IsVertex: true})
		mustDispatch(t, srv, CmdAdd, ObjVertex, req)
	}
	for _, e := range [][2]graphmodel.VertexId{{1, 2}, {1, 3}} {
		req := codec.NewWriter(32)
		req.PutUint64(uint64(e[0]))
		req.PutUint64(uint64(e[1]))
		encodeRow(req, graphmodel.Row{IsVertex: false})
		mustDispatch(t, srv, CmdAdd, ObjEdge, req)
	}

	req := codec.NewWriter(16)
	req.PutUint64(1)
	req.PutUint8(0)
	r := mustDispatch(t, srv, CmdGetAdjacency, ObjVertex, req)
	if code := readCode(t, r); code != OK {
		t.Fatalf("get adjacency: got code %d, want OK", code)
	}
	n, err := r.ReadUint64()
	if err != nil {
		t.Fatalf("reading count: %v", err)
	}
	if n != 2 {
		t.Fatalf("adjacency count = %d, want 2", n)
	}
}

func TestServerNumVerticesAndEdges(t *testing.T) {
	srv := newTestServer()
	for _, id := range []graphmodel.VertexId{10, 11} {
		req := codec.NewWriter(16)
		req.PutUint64(uint64(id))
		encodeRow(req, graphmodel.Row{IsVertex: true})
		mustDispatch(t, srv, CmdAdd, ObjVertex, req)
	}

	r := mustDispatch(t, srv, CmdNumObjects, ObjVertex, codec.NewWriter(0))
	if code := readCode(t, r); code != OK {
		t.Fatalf("num vertices: got code %d, want OK", code)
	}
	n, _ := r.ReadUint64()
	if n != 2 {
		t.Fatalf("num vertices = %d, want 2", n)
	}
}

func TestServerAddVertexFieldReturnsFieldID(t *testing.T) {
	srv := newTestServer()
	req := codec.NewWriter(32)
	req.PutString("label")
	req.PutUint8(uint8(graphvalue.TagString))
	req.PutBool(false)
	r := mustDispatch(t, srv, CmdAddField, ObjVertex, req)
	if code := readCode(t, r); code != OK {
		t.Fatalf("add field: got code %d, want OK", code)
	}
	id, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("reading field id: %v", err)
	}
	if id != 0 {
		t.Fatalf("first field id = %d, want 0", id)
	}
}

func TestServerReset(t *testing.T) {
	srv := newTestServer()
	req := codec.NewWriter(16)
	req.PutUint64(1)
	encodeRow(req, graphmodel.Row{IsVertex: true})
	mustDispatch(t, srv, CmdAdd, ObjVertex, req)

	r := mustDispatch(t, srv, CmdReset, ObjNone, codec.NewWriter(0))
	if code := readCode(t, r); code != OK {
		t.Fatalf("reset: got code %d, want OK", code)
	}
	if srv.Shard.NumVertices() != 0 {
		t.Fatalf("NumVertices after reset = %d, want 0", srv.Shard.NumVertices())
	}
}

func TestServerUnregisteredMessageID(t *testing.T) {
	srv := newTestServer()
	_, err := srv.Dispatcher.Dispatch(MessageID(99, ObjNone), codec.NewReader(nil))
	if err == nil {
		t.Fatalf("expected error for unregistered message id")
	}
}
