package schema

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for schema operations. Structured details travel in
// ViolationError; callers match with errors.Is.
var (
	ErrSchemaConflict  = errors.New("schema: conflicting registration")
	ErrUnknownSchema   = errors.New("schema: unknown schema")
	ErrSchemaViolation = errors.New("schema: violation")
)

// FieldType is the semantic type of a schema field.
type FieldType string

const (
	Float64 FieldType = "float64"
	Int64   FieldType = "int64"
)

// Resolution is the temporal granularity of a series.
type Resolution string

const (
	Tick     Resolution = "tick"
	Intraday Resolution = "intraday"
	Daily    Resolution = "daily"
)

// rank orders resolutions from finest to coarsest.
func (r Resolution) rank() int {
	switch r {
	case Tick:
		return 0
	case Intraday:
		return 1
	case Daily:
		return 2
	default:
		return -1
	}
}

// Valid reports whether r is a known resolution.
func (r Resolution) Valid() bool { return r.rank() >= 0 }

// FinerThan reports whether r is strictly finer than other.
func (r Resolution) FinerThan(other Resolution) bool {
	return r.rank() >= 0 && other.rank() >= 0 && r.rank() < other.rank()
}

// SideField is the field every tick schema must declare, holding +1 for
// buyer-initiated and -1 for seller-initiated trades.
const SideField = "side"

// Constraint is an optional per-field predicate. Int64 values are passed
// as their float64 conversion.
type Constraint func(v float64) error

// FieldSpec declares one schema field. Constraint does not participate in
// schema identity; only Name and Type do.
type FieldSpec struct {
	Name  string
	Type  FieldType
	Check Constraint
}

// Row is one timestamped record presented for validation. Values holds
// float64 for Float64 fields and int64 for Int64 fields.
type Row struct {
	Timestamp time.Time
	Values    map[string]any
}

// Schema is a named, immutable structural contract for a dataset shape.
type Schema struct {
	name       string
	resolution Resolution
	fields     []FieldSpec
	index      map[string]int
}

// New builds a schema after checking its shape: at least one field, no
// duplicate names, known types, and the tick side-field requirement.
func New(name string, resolution Resolution, fields []FieldSpec) (*Schema, error) {
	if name == "" {
		return nil, &ViolationError{Schema: name, Reason: "schema name required"}
	}
	if !resolution.Valid() {
		return nil, &ViolationError{Schema: name, Reason: fmt.Sprintf("unknown resolution %q", resolution)}
	}
	if len(fields) == 0 {
		return nil, &ViolationError{Schema: name, Reason: "at least one field required"}
	}

	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, &ViolationError{Schema: name, Reason: "field name required"}
		}
		if f.Type != Float64 && f.Type != Int64 {
			return nil, &ViolationError{Schema: name, Field: f.Name, Reason: fmt.Sprintf("unknown field type %q", f.Type)}
		}
		if _, dup := index[f.Name]; dup {
			return nil, &ViolationError{Schema: name, Field: f.Name, Reason: "duplicate field"}
		}
		index[f.Name] = i
	}

	if resolution == Tick {
		i, ok := index[SideField]
		if !ok {
			return nil, &ViolationError{Schema: name, Field: SideField, Reason: "tick schema requires a trade-side field"}
		}
		if fields[i].Type != Int64 {
			return nil, &ViolationError{Schema: name, Field: SideField, Reason: "trade-side field must be int64"}
		}
	}

	own := make([]FieldSpec, len(fields))
	copy(own, fields)

	return &Schema{name: name, resolution: resolution, fields: own, index: index}, nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Resolution returns the declared resolution class.
func (s *Schema) Resolution() Resolution { return s.resolution }

// Fields returns a copy of the declared field specs in declaration order.
func (s *Schema) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the spec for name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// NumFields returns the field count.
func (s *Schema) NumFields() int { return len(s.fields) }

// sameLayout reports whether two schemas are interchangeable: same
// resolution and same ordered (name, type) field list.
func (s *Schema) sameLayout(other *Schema) bool {
	if s.resolution != other.resolution || len(s.fields) != len(other.fields) {
		return false
	}
	for i, f := range s.fields {
		if other.fields[i].Name != f.Name || other.fields[i].Type != f.Type {
			return false
		}
	}
	return true
}

// WithResolution derives a schema with the same field layout at a coarser
// resolution, named "<name>_<resolution>". Used by container resampling.
func (s *Schema) WithResolution(target Resolution) (*Schema, error) {
	if target == s.resolution {
		return s, nil
	}
	return New(fmt.Sprintf("%s_%s", s.name, target), target, s.fields)
}

// ValidateRow checks one row for field presence, type conformance,
// per-field constraints, and resolution timestamp rules.
func (s *Schema) ValidateRow(row Row) error {
	if row.Timestamp.IsZero() {
		return &ViolationError{Schema: s.name, Reason: "zero timestamp"}
	}
	if s.resolution == Daily && !row.Timestamp.Equal(row.Timestamp.UTC().Truncate(24*time.Hour)) {
		return &ViolationError{
			Schema:    s.name,
			Reason:    "daily schema forbids sub-day timestamps",
			Timestamp: row.Timestamp,
		}
	}

	for _, f := range s.fields {
		raw, ok := row.Values[f.Name]
		if !ok {
			return &ViolationError{Schema: s.name, Field: f.Name, Reason: "missing field", Timestamp: row.Timestamp}
		}

		var v float64
		switch f.Type {
		case Float64:
			fv, ok := raw.(float64)
			if !ok {
				return &ViolationError{Schema: s.name, Field: f.Name, Reason: fmt.Sprintf("expected float64, got %T", raw), Timestamp: row.Timestamp}
			}
			v = fv
		case Int64:
			iv, ok := raw.(int64)
			if !ok {
				return &ViolationError{Schema: s.name, Field: f.Name, Reason: fmt.Sprintf("expected int64, got %T", raw), Timestamp: row.Timestamp}
			}
			v = float64(iv)
		}

		if s.resolution == Tick && f.Name == SideField && v != 1 && v != -1 {
			return &ViolationError{Schema: s.name, Field: f.Name, Reason: "trade side must be +1 or -1", Timestamp: row.Timestamp}
		}
		if f.Check != nil {
			if err := f.Check(v); err != nil {
				return &ViolationError{Schema: s.name, Field: f.Name, Reason: err.Error(), Timestamp: row.Timestamp}
			}
		}
	}

	// Extra fields are rejected so two containers sharing a schema name
	// cannot diverge in layout.
	if len(row.Values) > len(s.fields) {
		for name := range row.Values {
			if _, ok := s.index[name]; !ok {
				return &ViolationError{Schema: s.name, Field: name, Reason: "field not declared in schema", Timestamp: row.Timestamp}
			}
		}
	}

	return nil
}

// ViolationError pinpoints a violated schema invariant.
type ViolationError struct {
	Schema    string
	Field     string
	Reason    string
	Timestamp time.Time
}

func (e *ViolationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema %q: field %q: %s", e.Schema, e.Field, e.Reason)
	}
	return fmt.Sprintf("schema %q: %s", e.Schema, e.Reason)
}

// Is matches the ErrSchemaViolation sentinel.
func (e *ViolationError) Is(target error) bool { return target == ErrSchemaViolation }

// Positive is a constraint requiring v > 0.
func Positive(v float64) error {
	if v <= 0 {
		return fmt.Errorf("must be positive, got %v", v)
	}
	return nil
}

// NonNegative is a constraint requiring v >= 0.
func NonNegative(v float64) error {
	if v < 0 {
		return fmt.Errorf("must be non-negative, got %v", v)
	}
	return nil
}
