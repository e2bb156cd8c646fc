package main

import (
	"encoding/binary"
	"io"
	"net"

	"github.com/dreamware/graphlab-go/internal/codec"
	"github.com/dreamware/graphlab-go/internal/rpc"
	"github.com/dreamware/graphlab-go/internal/shardserver"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// serveClients accepts connections on ln and serves the client/server RPC
// protocol against srv until ln is closed: [u16 MessageID][u32 len][body]
// request, [u32 len][body] reply, matching internal/client's tcpShardConn
// bit-for-bit on the wire.
func serveClients(ln net.Listener, srv *shardserver.Server, logger *zap.SugaredLogger) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Infow("listener closed", "error", err)
			return
		}
		go serveConn(conn, srv, logger)
	}
}

func serveConn(conn net.Conn, srv *shardserver.Server, logger *zap.SugaredLogger) {
	defer conn.Close()
	connID := uuid.NewString()
	logger = logger.With("conn_id", connID, "remote", conn.RemoteAddr())
	for {
		var header [6]byte
		if _, err := io.ReadFull(conn, header[:]); err != nil {
			if err != io.EOF {
				logger.Debugw("connection read error", "error", err)
			}
			return
		}
		id := rpc.MessageID(binary.BigEndian.Uint16(header[0:2]))
		bodyLen := binary.BigEndian.Uint32(header[2:6])
		body := make([]byte, bodyLen)
		if bodyLen > 0 {
			if _, err := io.ReadFull(conn, body); err != nil {
				logger.Debugw("connection body read error", "error", err)
				return
			}
		}

		w, err := srv.Dispatcher.Dispatch(id, codec.NewReader(body))
		if err != nil {
			// Unknown command or malformed request: log it and reply with
			// just an error code, keeping the connection open.
			logger.Warnw("dispatch failed", "message_id", id, "error", err)
			code := shardserver.ErrInvalidHeader
			if err == rpc.ErrUnknownMessage {
				code = shardserver.ErrInvalidCommand
			}
			w = codec.NewWriter(4)
			w.PutUint32(uint32(code))
		}
		reply := w.Bytes()
		var replyLen [4]byte
		binary.BigEndian.PutUint32(replyLen[:], uint32(len(reply)))
		if _, err := conn.Write(replyLen[:]); err != nil {
			srv.Dispatcher.Release(w)
			return
		}
		if len(reply) > 0 {
			if _, err := conn.Write(reply); err != nil {
				srv.Dispatcher.Release(w)
				return
			}
		}
		srv.Dispatcher.Release(w)
	}
}
