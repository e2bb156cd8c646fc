package zkmembers

import (
	"fmt"
	"strconv"
	"strings"
)

func shardIDKey(id int) string {
	return fmt.Sprintf("%s%d", ShardNameKey, id)
}

func parseShardIDKey(key string) (int, bool) {
	if !strings.HasPrefix(key, ShardNameKey) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(key, ShardNameKey))
	if err != nil {
		return 0, false
	}
	return id, true
}
