package shardserver

import (
	"github.com/dreamware/graphlab-go/internal/codec"
	"github.com/dreamware/graphlab-go/internal/graphmodel"
	"github.com/dreamware/graphlab-go/internal/graphvalue"
)

func encodeRow(w *codec.Writer, row graphmodel.Row) {
	w.PutUint64(uint64(len(row.Fields)))
	w.PutBool(row.IsVertex)
	for _, f := range row.Fields {
		graphvalue.Encode(w, f)
	}
}

func decodeRow(r *codec.Reader) (graphmodel.Row, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return graphmodel.Row{}, err
	}
	isVertex, err := r.ReadBool()
	if err != nil {
		return graphmodel.Row{}, err
	}
	fields := make([]graphvalue.Value, n)
	for i := range fields {
		v, err := graphvalue.Decode(r)
		if err != nil {
			return graphmodel.Row{}, err
		}
		fields[i] = v
	}
	return graphmodel.Row{Fields: fields, IsVertex: isVertex}, nil
}
