// Package zkmembers provides cluster-membership helpers: a watched
// shard-name registry plus node-liveness monitoring feeding unreachable-node
// detection. It is backed by go.etcd.io/etcd/client/v3 rather than an
// actual Zookeeper client, using etcd's watch support for the same
// coordination-KV role.
package zkmembers
