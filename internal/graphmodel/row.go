package graphmodel

import (
	"github.com/dreamware/graphlab-go/internal/graphvalue"
	"github.com/pkg/errors"
)

// ErrSchemaMismatch is returned when a Row operation's field count or types
// no longer agree with the Schema it was built from: row.len() must equal
// schema.len(), and each row.field(i).tag must equal schema[i].type.
var ErrSchemaMismatch = errors.New("graphmodel: row does not match schema shape")

// Row is an ordered sequence of tagged field values plus an IsVertex flag,
// always returned by value: no owned raw pointers, no explicit free calls.
type Row struct {
	Fields   []graphvalue.Value
	IsVertex bool
}

// NewRowForSchema builds an all-NULL row matching schema's current shape,
// the state every newly-added vertex or edge row starts in.
func NewRowForSchema(schema *Schema, isVertex bool) Row {
	defs := schema.All()
	fields := make([]graphvalue.Value, len(defs))
	for i, d := range defs {
		fields[i] = graphvalue.NewNull(d.Type)
	}
	return Row{Fields: fields, IsVertex: isVertex}
}

// AppendNullField grows row by one NULL field, matching a collective
// schema field addition.
func (r *Row) AppendNullField(tag graphvalue.Tag) {
	r.Fields = append(r.Fields, graphvalue.NewNull(tag))
}

// AllNull reports whether every field in the row is NULL, the condition
// under which re-adding an existing vertex overwrites in place rather than
// returning a duplicate error.
func (r Row) AllNull() bool {
	for _, f := range r.Fields {
		if !f.IsNull() {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the row, safe to hand to a caller
// that may mutate it.
func (r Row) Clone() Row {
	fields := make([]graphvalue.Value, len(r.Fields))
	copy(fields, r.Fields)
	return Row{Fields: fields, IsVertex: r.IsVertex}
}

// CheckShape validates the row against the current schema shape, returning
// ErrSchemaMismatch if the lengths or tags have diverged.
func (r Row) CheckShape(schema *Schema) error {
	defs := schema.All()
	if len(r.Fields) != len(defs) {
		return ErrSchemaMismatch
	}
	for i, d := range defs {
		if r.Fields[i].Tag() != d.Type {
			return ErrSchemaMismatch
		}
	}
	return nil
}
