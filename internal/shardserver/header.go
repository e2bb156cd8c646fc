package shardserver

import "github.com/dreamware/graphlab-go/internal/rpc"

// Cmd is the operation byte of a request header.
type Cmd uint8

// Obj is the object-kind byte of a request header: which row type (vertex
// or edge) the command operates on, where applicable.
type Obj uint8

const (
	// ObjNone is used by commands that don't distinguish vertex/edge.
	ObjNone Obj = 0
	// ObjVertex marks a vertex-targeted command.
	ObjVertex Obj = 1
	// ObjEdge marks an edge-targeted command.
	ObjEdge Obj = 2
)

const (
	// CmdGet retrieves a row by id.
	CmdGet Cmd = 1
	// CmdAdd inserts a new row.
	CmdAdd Cmd = 2
	// CmdSetField mutates one field of an existing row.
	CmdSetField Cmd = 3
	// CmdAddField adds a new field to the shared schema.
	CmdAddField Cmd = 4
	// CmdAddMirror records a vertex mirror on another shard.
	CmdAddMirror Cmd = 5
	// CmdGetAdjacency retrieves a vertex's adjacency list.
	CmdGetAdjacency Cmd = 6
	// CmdNumObjects retrieves the vertex or edge count.
	CmdNumObjects Cmd = 7
	// CmdReset wipes the shard.
	CmdReset Cmd = 8
	// CmdBatchAdd inserts many rows in one request. Each row is a separate
	// shard insert that takes the shard's mutex on its own; the batch as a
	// whole is not applied under one lock.
	CmdBatchAdd Cmd = 9
	// CmdBatchGet retrieves many rows in one request.
	CmdBatchGet Cmd = 10
)

// MessageID packs (cmd, obj) into the 16-bit id internal/rpc.Dispatcher
// demultiplexes on.
func MessageID(cmd Cmd, obj Obj) rpc.MessageID {
	return rpc.MessageID(uint16(cmd)<<8 | uint16(obj))
}
