package client

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"time"

	"github.com/dreamware/graphlab-go/internal/rpc"
	"github.com/pkg/errors"
)

// ErrServerUnreachable is returned by a ShardConn when the underlying
// connection cannot complete a round trip.
var ErrServerUnreachable = errors.New("client: shard server unreachable")

// ShardConn issues one request/reply round trip against a single shard
// server. Implementations must serialize concurrent Call invocations
// themselves; Client never assumes a ShardConn is safe for concurrent use
// from more than one in-flight call at a time.
type ShardConn interface {
	Call(ctx context.Context, id rpc.MessageID, body []byte) ([]byte, error)
	Close() error
}

// tcpShardConn is a synchronous, length-prefixed request/reply client over
// a single net.Conn. Unlike internal/transport's buffered all-to-all
// fabric (built for shard servers gossiping with each other), a client
// issuing one query at a time wants a plain blocking round trip, so this
// type reuses the transport package's framing idiom
// ([len][payload]) rather than its Transport interface.
type tcpShardConn struct {
	mu   sync.Mutex
	conn net.Conn
}

// NewTcpShardConn wraps an established connection to a shard server.
func NewTcpShardConn(conn net.Conn) ShardConn {
	return &tcpShardConn{conn: conn}
}

// Call writes a [u16 MessageID][u32 len][body] request frame and blocks
// for the matching [u32 len][body] reply frame, honoring ctx's deadline.
func (c *tcpShardConn) Call(ctx context.Context, id rpc.MessageID, body []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(dl)
	} else {
		_ = c.conn.SetDeadline(time.Time{})
	}

	header := make([]byte, 6)
	binary.BigEndian.PutUint16(header[0:2], uint16(id))
	binary.BigEndian.PutUint32(header[2:6], uint32(len(body)))
	if _, err := c.conn.Write(header); err != nil {
		return nil, errors.Wrap(ErrServerUnreachable, err.Error())
	}
	if len(body) > 0 {
		if _, err := c.conn.Write(body); err != nil {
			return nil, errors.Wrap(ErrServerUnreachable, err.Error())
		}
	}

	var replyLen [4]byte
	if _, err := io.ReadFull(c.conn, replyLen[:]); err != nil {
		return nil, errors.Wrap(ErrServerUnreachable, err.Error())
	}
	n := binary.BigEndian.Uint32(replyLen[:])
	reply := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(c.conn, reply); err != nil {
			return nil, errors.Wrap(ErrServerUnreachable, err.Error())
		}
	}
	return reply, nil
}

func (c *tcpShardConn) Close() error {
	return c.conn.Close()
}
