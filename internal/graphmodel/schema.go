package graphmodel

import (
	"sync"

	"github.com/dreamware/graphlab-go/internal/graphvalue"
	"github.com/pkg/errors"
)

// ErrFieldExists is returned by Schema.AddField when a field name is
// already present; field schemas are add-only.
var ErrFieldExists = errors.New("graphmodel: field name already exists")

// FieldDef describes one field of a vertex or edge schema.
type FieldDef struct {
	Name    string
	Type    graphvalue.Tag
	Indexed bool
}

// Schema is a process-wide, append-only mapping from FieldId to FieldDef.
// Mutating it is a collective operation: every shard must apply a schema
// change before any row is written against the new shape. Safe for
// concurrent use.
type Schema struct {
	mu     sync.RWMutex
	fields []FieldDef
	byName map[string]FieldId
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{byName: make(map[string]FieldId)}
}

// Len reports the number of fields currently defined.
func (s *Schema) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields)
}

// Field returns the definition for the given id. ok is false if id is out
// of range.
func (s *Schema) Field(id FieldId) (FieldDef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.fields) {
		return FieldDef{}, false
	}
	return s.fields[id], true
}

// FieldByName resolves a field name to its id. ok is false if unknown.
func (s *Schema) FieldByName(name string) (FieldId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	return id, ok
}

// AddField appends a new field, returning its assigned id. Returns
// ErrFieldExists if the name is already defined.
func (s *Schema) AddField(def FieldDef) (FieldId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[def.Name]; exists {
		return 0, ErrFieldExists
	}
	id := FieldId(len(s.fields))
	s.fields = append(s.fields, def)
	s.byName[def.Name] = id
	return id, nil
}

// All returns a snapshot copy of every field definition, in FieldId order.
func (s *Schema) All() []FieldDef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FieldDef, len(s.fields))
	copy(out, s.fields)
	return out
}
