package ingress

import (
	"strconv"
	"strings"

	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/pkg/errors"
)

// ErrParseLine is returned by a Parser when a line does not match its
// format.
var ErrParseLine = errors.New("ingress: could not parse line")

// Edge is a parsed (source, target) pair; parsers never emit self-edges.
type Edge struct {
	Src, Dst graphmodel.VertexId
}

// Parser turns one line of input into zero or more edges. Every builtin
// parser below drops self-edges (src == dst) itself, so callers receive
// none.
type Parser func(line string) ([]Edge, error)

// SnapParser implements the SNAP format: '#'-prefixed comment lines are
// ignored; otherwise a line holds two whitespace-separated decimal vertex
// ids.
func SnapParser(line string) ([]Edge, error) {
	if line == "" {
		return nil, nil
	}
	if line[0] == '#' {
		return nil, nil
	}
	return parsePair(line)
}

// TsvParser is SnapParser without comment handling.
func TsvParser(line string) ([]Edge, error) {
	if line == "" {
		return nil, nil
	}
	return parsePair(line)
}

func parsePair(line string) ([]Edge, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, ErrParseLine
	}
	src, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return nil, errors.Wrap(ErrParseLine, err.Error())
	}
	dst, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return nil, errors.Wrap(ErrParseLine, err.Error())
	}
	if src == dst {
		return nil, nil
	}
	return []Edge{{Src: graphmodel.VertexId(src), Dst: graphmodel.VertexId(dst)}}, nil
}

// AdjParser implements the adjacency-list format: "src,cnt,dst1,dst2,...",
// comma- or whitespace-separated. cnt must equal the number of targets
// actually present, otherwise the line is a parse error (not merely
// ignored).
func AdjParser(line string) ([]Edge, error) {
	if line == "" {
		return nil, nil
	}
	tokens := splitAdjLine(line)
	if len(tokens) < 2 {
		return nil, ErrParseLine
	}
	src, err := strconv.ParseUint(tokens[0], 10, 64)
	if err != nil {
		return nil, errors.Wrap(ErrParseLine, err.Error())
	}
	cnt, err := strconv.ParseUint(tokens[1], 10, 64)
	if err != nil {
		return nil, errors.Wrap(ErrParseLine, err.Error())
	}
	targets := tokens[2:]
	if uint64(len(targets)) != cnt {
		return nil, ErrParseLine
	}

	edges := make([]Edge, 0, len(targets))
	for _, t := range targets {
		dst, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return nil, errors.Wrap(ErrParseLine, err.Error())
		}
		if src == dst {
			continue
		}
		edges = append(edges, Edge{Src: graphmodel.VertexId(src), Dst: graphmodel.VertexId(dst)})
	}
	return edges, nil
}

// splitAdjLine splits on commas and/or whitespace, dropping empty tokens
// produced by adjacent separators.
func splitAdjLine(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return fields
}

// ParserByName resolves a configured format name ("snap", "tsv", "adj")
// to its Parser. ok is false for an unrecognized name.
func ParserByName(name string) (Parser, bool) {
	switch name {
	case "snap":
		return SnapParser, true
	case "tsv":
		return TsvParser, true
	case "adj":
		return AdjParser, true
	default:
		return nil, false
	}
}
