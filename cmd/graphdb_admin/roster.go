package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ShardEntry is one shard's network location in a Roster.
type ShardEntry struct {
	ID         int    `yaml:"id"`
	Addr       string `yaml:"addr"`
	ConfigPath string `yaml:"config_path"`
}

// Roster is the set of shard servers graphdb_admin manages: a decimal
// ShardId-to-address mapping loaded from a YAML file alongside each shard
// server's own Config.
type Roster struct {
	Shards []ShardEntry `yaml:"shards"`
}

func loadRoster(path string) (Roster, error) {
	var r Roster
	b, err := os.ReadFile(path)
	if err != nil {
		return r, errors.Wrap(err, "graphdb_admin: reading roster file")
	}
	if err := yaml.Unmarshal(b, &r); err != nil {
		return r, errors.Wrap(err, "graphdb_admin: parsing roster file")
	}
	return r, nil
}
