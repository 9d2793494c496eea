package container

import (
	"encoding/json"
	"fmt"
	"time"

	"QuantKit/internal/schema"
)

// payload is the wire form used by the cache layer and the HTTP surface:
// schema name plus parallel arrays, matching the in-memory layout.
type payload struct {
	Schema     string               `json:"schema"`
	Resolution schema.Resolution    `json:"resolution"`
	Timestamps []time.Time          `json:"timestamps"`
	Float64s   map[string][]float64 `json:"float64s,omitempty"`
	Int64s     map[string][]int64   `json:"int64s,omitempty"`
}

// MarshalJSON encodes the container as parallel arrays keyed by field.
func (c *Container) MarshalJSON() ([]byte, error) {
	p := payload{
		Schema:     c.schema.Name(),
		Resolution: c.schema.Resolution(),
		Timestamps: c.ts,
	}
	for name, col := range c.cols {
		if col.typ == schema.Int64 {
			if p.Int64s == nil {
				p.Int64s = map[string][]int64{}
			}
			p.Int64s[name] = col.i64
		} else {
			if p.Float64s == nil {
				p.Float64s = map[string][]float64{}
			}
			p.Float64s[name] = col.f64
		}
	}
	return json.Marshal(p)
}

// Decode rebuilds a container from its JSON form, resolving the schema
// (and its constraints) through reg. The result passes full construction
// validation, so a tampered payload cannot produce an invalid container.
func Decode(data []byte, reg *schema.Registry) (*Container, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode container: %w", err)
	}

	s, err := reg.Resolve(p.Schema)
	if err != nil {
		return nil, err
	}
	if s.Resolution() != p.Resolution {
		return nil, &schema.ViolationError{
			Schema: p.Schema,
			Reason: fmt.Sprintf("payload resolution %q, schema declares %q", p.Resolution, s.Resolution()),
		}
	}

	cols := make(map[string]Column, len(p.Float64s)+len(p.Int64s))
	for name, vals := range p.Float64s {
		cols[name] = Float64Column(vals)
	}
	for name, vals := range p.Int64s {
		cols[name] = Int64Column(vals)
	}
	return New(s, p.Timestamps, cols)
}
