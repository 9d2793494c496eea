package schema

import "fmt"

// Registry is the single source of truth for schema definitions. It is an
// explicitly owned instance: construct one with NewRegistry and pass it to
// every component that validates.
//
// Register is single-writer-at-a-time; concurrent registrations for the
// same name require external synchronization. Resolve is safe for any
// number of concurrent readers against a registry that is not being
// mutated.
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema under name. Re-registering an identical layout is
// idempotent and returns the already-registered schema; a different layout
// under an existing name fails with ErrSchemaConflict.
func (r *Registry) Register(name string, resolution Resolution, fields []FieldSpec) (*Schema, error) {
	s, err := New(name, resolution, fields)
	if err != nil {
		return nil, err
	}

	if existing, ok := r.schemas[name]; ok {
		if !existing.sameLayout(s) {
			return nil, fmt.Errorf("%w: %q already registered with a different layout", ErrSchemaConflict, name)
		}
		return existing, nil
	}

	r.schemas[name] = s
	return s, nil
}

// Resolve returns the schema registered under name.
func (r *Registry) Resolve(name string) (*Schema, error) {
	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	return s, nil
}

// Names returns the registered schema names in unspecified order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		out = append(out, name)
	}
	return out
}
