package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the shard server process's YAML config: the log level, listen
// address, and shard id knobs a process needs on startup, loaded from a
// file named on the command line rather than environment variables.
type Config struct {
	// ListenAddr is the client/server RPC listen address: the codec+header
	// wire protocol, distinct from the inter-shard transport fabric.
	ListenAddr string `yaml:"listen_addr"`
	// ShardID is this process's ShardId within the grid constraint.
	ShardID int `yaml:"shard_id"`
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// ZkEndpoints, when non-empty, registers this shard's name with the
	// etcd-backed member registry (internal/zkmembers) under ZkPrefix.
	ZkEndpoints []string `yaml:"zk_endpoints"`
	ZkPrefix    string   `yaml:"zk_prefix"`
	// MetricsAddr, when non-empty, serves Prometheus counters
	// (internal/shardserver's requestsTotal/errorsTotal) over HTTP at
	// /metrics.
	MetricsAddr string `yaml:"metrics_addr"`
}

func defaultConfig() Config {
	return Config{ListenAddr: ":7100", LogLevel: "info"}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "shardserver: reading config file")
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrap(err, "shardserver: parsing config file")
	}
	return cfg, nil
}
