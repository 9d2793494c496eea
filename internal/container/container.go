// Package container implements the schema-validated, timestamp-indexed
// series structure shared by adapters, generators, and the permutation
// test engine. Data is held structure-of-arrays: one timestamp arena plus
// one typed column per schema field, all equal length at all times.
package container

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"QuantKit/internal/schema"
)

var (
	ErrUnorderedTimestamps = errors.New("container: timestamps not strictly increasing")
	ErrNonMonotonicAppend  = errors.New("container: append timestamp not after last row")
	ErrUnknownField        = errors.New("container: unknown field")
)

// Column carries bulk input for one schema field.
type Column struct {
	typ schema.FieldType
	f64 []float64
	i64 []int64
}

// Float64Column wraps values for a float64 field.
func Float64Column(values []float64) Column {
	return Column{typ: schema.Float64, f64: values}
}

// Int64Column wraps values for an int64 field.
func Int64Column(values []int64) Column {
	return Column{typ: schema.Int64, i64: values}
}

func (c Column) length() int {
	if c.typ == schema.Int64 {
		return len(c.i64)
	}
	return len(c.f64)
}

func (c Column) value(i int) any {
	if c.typ == schema.Int64 {
		return c.i64[i]
	}
	return c.f64[i]
}

// Container owns one resolution of one series. Append is
// single-writer-at-a-time (caller obligation); all read operations are
// safe for concurrent use against a container that is not being mutated.
type Container struct {
	schema *schema.Schema
	ts     []time.Time
	cols   map[string]*Column
}

// New bulk-loads a container. Every row is validated against the schema
// and the length/order invariants before any data is retained; on failure
// no container exists. Input slices are copied.
func New(s *schema.Schema, timestamps []time.Time, columns map[string]Column) (*Container, error) {
	n := len(timestamps)

	for _, f := range s.Fields() {
		col, ok := columns[f.Name]
		if !ok {
			return nil, &schema.ViolationError{Schema: s.Name(), Field: f.Name, Reason: "missing column"}
		}
		if col.typ != f.Type {
			return nil, &schema.ViolationError{Schema: s.Name(), Field: f.Name, Reason: fmt.Sprintf("column type %s, schema wants %s", col.typ, f.Type)}
		}
		if col.length() != n {
			return nil, &schema.ViolationError{Schema: s.Name(), Field: f.Name, Reason: fmt.Sprintf("column length %d, want %d", col.length(), n)}
		}
	}
	for name := range columns {
		if _, ok := s.Field(name); !ok {
			return nil, &schema.ViolationError{Schema: s.Name(), Field: name, Reason: "field not declared in schema"}
		}
	}

	for i := 1; i < n; i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, fmt.Errorf("%w: row %d (%s) not after row %d (%s)",
				ErrUnorderedTimestamps, i, timestamps[i].Format(time.RFC3339Nano), i-1, timestamps[i-1].Format(time.RFC3339Nano))
		}
	}

	row := schema.Row{Values: make(map[string]any, s.NumFields())}
	for i := 0; i < n; i++ {
		row.Timestamp = timestamps[i]
		for name, col := range columns {
			row.Values[name] = col.value(i)
		}
		if err := s.ValidateRow(row); err != nil {
			return nil, err
		}
	}

	c := &Container{
		schema: s,
		ts:     make([]time.Time, n),
		cols:   make(map[string]*Column, len(columns)),
	}
	copy(c.ts, timestamps)
	for name, col := range columns {
		own := Column{typ: col.typ}
		if col.typ == schema.Int64 {
			own.i64 = make([]int64, n)
			copy(own.i64, col.i64)
		} else {
			own.f64 = make([]float64, n)
			copy(own.f64, col.f64)
		}
		c.cols[name] = &own
	}
	return c, nil
}

// Empty returns a valid zero-length container for s.
func Empty(s *schema.Schema) *Container {
	cols := make(map[string]*Column, s.NumFields())
	for _, f := range s.Fields() {
		cols[f.Name] = &Column{typ: f.Type}
	}
	return &Container{schema: s, cols: cols}
}

// Schema returns the schema this container conforms to.
func (c *Container) Schema() *schema.Schema { return c.schema }

// Len returns the row count.
func (c *Container) Len() int { return len(c.ts) }

// Timestamps exposes the timestamp arena as a read-only view. No copy is
// made; mutating the returned slice breaks the container invariants.
func (c *Container) Timestamps() []time.Time { return c.ts }

// Float64s exposes a float64 column as a read-only view.
func (c *Container) Float64s(field string) ([]float64, error) {
	col, ok := c.cols[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if col.typ != schema.Float64 {
		return nil, fmt.Errorf("%w: %q is %s", ErrUnknownField, field, col.typ)
	}
	return col.f64, nil
}

// Int64s exposes an int64 column as a read-only view.
func (c *Container) Int64s(field string) ([]int64, error) {
	col, ok := c.cols[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if col.typ != schema.Int64 {
		return nil, fmt.Errorf("%w: %q is %s", ErrUnknownField, field, col.typ)
	}
	return col.i64, nil
}

// Row materializes row i for validation or per-row processing.
func (c *Container) Row(i int) schema.Row {
	values := make(map[string]any, len(c.cols))
	for name, col := range c.cols {
		values[name] = col.value(i)
	}
	return schema.Row{Timestamp: c.ts[i], Values: values}
}

// Append validates row and extends every column by exactly one element.
// All-or-nothing: a failing append leaves the container untouched. The
// timestamp must be strictly greater than the last row's, regardless of
// field validity.
func (c *Container) Append(row schema.Row) error {
	if n := len(c.ts); n > 0 && !row.Timestamp.After(c.ts[n-1]) {
		return fmt.Errorf("%w: %s <= %s",
			ErrNonMonotonicAppend, row.Timestamp.Format(time.RFC3339Nano), c.ts[n-1].Format(time.RFC3339Nano))
	}
	if err := c.schema.ValidateRow(row); err != nil {
		return err
	}

	c.ts = append(c.ts, row.Timestamp)
	for name, col := range c.cols {
		if col.typ == schema.Int64 {
			col.i64 = append(col.i64, row.Values[name].(int64))
		} else {
			col.f64 = append(col.f64, row.Values[name].(float64))
		}
	}
	return nil
}

// Slice returns a new container holding rows with timestamp in
// [start, end]. The source is never mutated; the result has fresh backing
// arrays so later appends never alias. An empty window yields a valid
// zero-length container.
func (c *Container) Slice(start, end time.Time) *Container {
	lo := sort.Search(len(c.ts), func(i int) bool { return !c.ts[i].Before(start) })
	hi := sort.Search(len(c.ts), func(i int) bool { return c.ts[i].After(end) })
	if lo >= hi {
		return Empty(c.schema)
	}

	out := &Container{
		schema: c.schema,
		ts:     make([]time.Time, hi-lo),
		cols:   make(map[string]*Column, len(c.cols)),
	}
	copy(out.ts, c.ts[lo:hi])
	for name, col := range c.cols {
		own := Column{typ: col.typ}
		if col.typ == schema.Int64 {
			own.i64 = make([]int64, hi-lo)
			copy(own.i64, col.i64[lo:hi])
		} else {
			own.f64 = make([]float64, hi-lo)
			copy(own.f64, col.f64[lo:hi])
		}
		out.cols[name] = &own
	}
	return out
}
