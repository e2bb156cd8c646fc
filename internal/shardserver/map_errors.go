package shardserver

import (
	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/dreamware/graphlab-go/internal/graphvalue"
	"github.com/dreamware/graphlab-go/internal/shard"
)

func mapKnown(err error) ErrorCode {
	switch err {
	case shard.ErrDuplicateVertex, graphmodel.ErrFieldExists:
		return ErrDuplicate
	case graphvalue.ErrWrongTag, graphvalue.ErrDeltaOnNonNumeric:
		return ErrInvalidType
	case shard.ErrVertexNotFound, shard.ErrEdgeNotFound, shard.ErrFieldNotFound:
		return ErrInvalidID
	default:
		return ErrInvalidCommand
	}
}
