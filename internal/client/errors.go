package client

import (
	"github.com/dreamware/graphlab-go/internal/shardserver"
	"github.com/pkg/errors"
)

// Sentinel errors a caller can compare against with errors.Is, translated
// from the wire-level shardserver.ErrorCode taxonomy.
var (
	ErrInvalidID      = errors.New("client: invalid vertex, edge, or field id")
	ErrInvalidType    = errors.New("client: value tag does not match field schema")
	ErrDuplicate      = errors.New("client: vertex or field already exists")
	ErrInvalidHeader  = errors.New("client: malformed request header")
	ErrInvalidCommand = errors.New("client: no handler for requested command")
)

// errorFromCode translates a reply's leading ErrorCode into a Go error, or
// nil for shardserver.OK.
func errorFromCode(code shardserver.ErrorCode) error {
	switch code {
	case shardserver.OK:
		return nil
	case shardserver.ErrServerUnreachable:
		return ErrServerUnreachable
	case shardserver.ErrInvalidID:
		return ErrInvalidID
	case shardserver.ErrInvalidType:
		return ErrInvalidType
	case shardserver.ErrDuplicate:
		return ErrDuplicate
	case shardserver.ErrInvalidHeader:
		return ErrInvalidHeader
	default:
		return ErrInvalidCommand
	}
}
