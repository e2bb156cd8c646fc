package zkmembers

import (
	"context"
	"sync"

	clientv3 "go.etcd.io/etcd/client/v3"
	"github.com/pkg/errors"
)

// ShardNameKey is the etcd key prefix under which the active shard-name
// mapping is stored, watched by every ShardNameRegistry (cmd/shardserver
// builds one when zk_endpoints is configured) so it picks up a rename
// without a restart.
const ShardNameKey = "/graphlab/shard-names/"

// ShardNameRegistry is a watched mapping from shard id to its
// human-readable name, backed by etcd. Safe for concurrent use.
type ShardNameRegistry struct {
	client *clientv3.Client

	mu    sync.RWMutex
	names map[int]string
}

// NewShardNameRegistry connects to etcd, loads the current mapping, and
// starts a background watch that keeps it up to date.
func NewShardNameRegistry(ctx context.Context, client *clientv3.Client) (*ShardNameRegistry, error) {
	r := &ShardNameRegistry{client: client, names: make(map[int]string)}

	resp, err := client.Get(ctx, ShardNameKey, clientv3.WithPrefix())
	if err != nil {
		return nil, errors.Wrap(err, "zkmembers: initial shard-name load")
	}
	for _, kv := range resp.Kvs {
		id, ok := parseShardIDKey(string(kv.Key))
		if !ok {
			continue
		}
		r.names[id] = string(kv.Value)
	}

	go r.watch(ctx)
	return r, nil
}

func (r *ShardNameRegistry) watch(ctx context.Context) {
	watchChan := r.client.Watch(ctx, ShardNameKey, clientv3.WithPrefix())
	for resp := range watchChan {
		for _, ev := range resp.Events {
			id, ok := parseShardIDKey(string(ev.Kv.Key))
			if !ok {
				continue
			}
			r.mu.Lock()
			if ev.Type == clientv3.EventTypeDelete {
				delete(r.names, id)
			} else {
				r.names[id] = string(ev.Kv.Value)
			}
			r.mu.Unlock()
		}
	}
}

// Name returns the current name for shard id, and whether one is set.
func (r *ShardNameRegistry) Name(id int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[id]
	return name, ok
}

// All returns a copy of the full id-to-name mapping, safe to retain.
func (r *ShardNameRegistry) All() map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int]string, len(r.names))
	for k, v := range r.names {
		out[k] = v
	}
	return out
}

// SetName publishes a new name for shard id, visible to every watcher
// after the round trip to etcd.
func (r *ShardNameRegistry) SetName(ctx context.Context, id int, name string) error {
	_, err := r.client.Put(ctx, shardIDKey(id), name)
	return errors.Wrapf(err, "zkmembers: set name for shard %d", id)
}
