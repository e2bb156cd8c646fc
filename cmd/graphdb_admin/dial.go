package main

import (
	"net"
	"time"

	"github.com/dreamware/graphlab-go/internal/client"
	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/dreamware/graphlab-go/internal/shardmanager"
	"github.com/pkg/errors"
)

// dialRoster connects to every shard in r and returns a client.Client ready
// to issue requests against the live cluster.
func dialRoster(r Roster) (*client.Client, error) {
	constraint, err := shardmanager.New(len(r.Shards))
	if err != nil {
		return nil, errors.Wrap(err, "graphdb_admin: building shard constraint")
	}

	conns := make(map[graphmodel.ShardId]client.ShardConn, len(r.Shards))
	for _, entry := range r.Shards {
		conn, err := net.DialTimeout("tcp", entry.Addr, 5*time.Second)
		if err != nil {
			return nil, errors.Wrapf(err, "graphdb_admin: dialing shard %d at %s", entry.ID, entry.Addr)
		}
		conns[graphmodel.ShardId(entry.ID)] = client.NewTcpShardConn(conn)
	}
	return client.New(constraint, conns), nil
}
