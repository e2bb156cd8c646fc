package main

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/dreamware/graphlab-go/internal/codec"
	"github.com/dreamware/graphlab-go/internal/shard"
	"github.com/dreamware/graphlab-go/internal/shardserver"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startTestServer(t *testing.T) net.Conn {
	t.Helper()
	srv := shardserver.New(shard.New(0))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go serveClients(ln, srv, zap.NewNop().Sugar())

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func sendRequest(t *testing.T, conn net.Conn, id uint16, body []byte) []byte {
	t.Helper()
	var header [6]byte
	binary.BigEndian.PutUint16(header[0:2], id)
	binary.BigEndian.PutUint32(header[2:6], uint32(len(body)))
	_, err := conn.Write(header[:])
	require.NoError(t, err)
	if len(body) > 0 {
		_, err = conn.Write(body)
		require.NoError(t, err)
	}

	var lenBuf [4]byte
	_, err = io.ReadFull(conn, lenBuf[:])
	require.NoError(t, err)
	replyLen := binary.BigEndian.Uint32(lenBuf[:])
	reply := make([]byte, replyLen)
	if replyLen > 0 {
		_, err = io.ReadFull(conn, reply)
		require.NoError(t, err)
	}
	return reply
}

func TestServeConnRoundTripsAddAndGetVertex(t *testing.T) {
	conn := startTestServer(t)

	addID := uint16(shardserver.MessageID(shardserver.CmdAdd, shardserver.ObjVertex))
	w := codec.NewWriter(32)
	w.PutUint64(1)
	w.PutUint64(0) // empty row: 0 fields
	w.PutBool(true)
	reply := sendRequest(t, conn, addID, w.Bytes())
	r := codec.NewReader(reply)
	code, err := r.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(shardserver.OK), code)

	getID := uint16(shardserver.MessageID(shardserver.CmdGet, shardserver.ObjVertex))
	w2 := codec.NewWriter(8)
	w2.PutUint64(1)
	reply2 := sendRequest(t, conn, getID, w2.Bytes())
	r2 := codec.NewReader(reply2)
	code2, err := r2.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(shardserver.OK), code2)
}

func TestServeConnUnknownMessageRepliesInvalidCommand(t *testing.T) {
	conn := startTestServer(t)
	reply := sendRequest(t, conn, 0xFFFF, nil)
	code, err := codec.NewReader(reply).ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(shardserver.ErrInvalidCommand), code)

	// The connection stays usable after the error reply.
	numID := uint16(shardserver.MessageID(shardserver.CmdNumObjects, shardserver.ObjVertex))
	code2, err := codec.NewReader(sendRequest(t, conn, numID, nil)).ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(shardserver.OK), code2)
}
