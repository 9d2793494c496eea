package container

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantKit/internal/schema"
)

func dailySchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("prices", schema.Daily, []schema.FieldSpec{
		{Name: "close", Type: schema.Float64, Check: schema.Positive},
	})
	require.NoError(t, err)
	return s
}

func days(t *testing.T, n int) []time.Time {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func TestNewRoundTrip(t *testing.T) {
	s := dailySchema(t)
	ts := days(t, 5)
	closes := []float64{100, 102, 99, 105, 103}

	c, err := New(s, ts, map[string]Column{"close": Float64Column(closes)})
	require.NoError(t, err)

	assert.Equal(t, 5, c.Len())
	got, err := c.Float64s("close")
	require.NoError(t, err)
	assert.Equal(t, closes, got)
	assert.Equal(t, ts, c.Timestamps())

	// Input slices were copied.
	closes[0] = -1
	assert.Equal(t, 100.0, got[0])
}

func TestNewRejectsBadInput(t *testing.T) {
	s := dailySchema(t)
	ts := days(t, 3)

	t.Run("missing column", func(t *testing.T) {
		_, err := New(s, ts, map[string]Column{})
		assert.ErrorIs(t, err, schema.ErrSchemaViolation)
	})

	t.Run("undeclared column", func(t *testing.T) {
		_, err := New(s, ts, map[string]Column{
			"close": Float64Column([]float64{1, 2, 3}),
			"open":  Float64Column([]float64{1, 2, 3}),
		})
		assert.ErrorIs(t, err, schema.ErrSchemaViolation)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := New(s, ts, map[string]Column{"close": Float64Column([]float64{1, 2})})
		assert.ErrorIs(t, err, schema.ErrSchemaViolation)
	})

	t.Run("duplicate timestamp", func(t *testing.T) {
		dup := []time.Time{ts[0], ts[0], ts[1]}
		_, err := New(s, dup, map[string]Column{"close": Float64Column([]float64{1, 2, 3})})
		assert.ErrorIs(t, err, ErrUnorderedTimestamps)
	})

	t.Run("out of order", func(t *testing.T) {
		rev := []time.Time{ts[2], ts[1], ts[0]}
		_, err := New(s, rev, map[string]Column{"close": Float64Column([]float64{1, 2, 3})})
		assert.ErrorIs(t, err, ErrUnorderedTimestamps)
	})

	t.Run("constraint violation", func(t *testing.T) {
		_, err := New(s, ts, map[string]Column{"close": Float64Column([]float64{1, -2, 3})})
		assert.ErrorIs(t, err, schema.ErrSchemaViolation)
	})
}

func TestAppend(t *testing.T) {
	s := dailySchema(t)
	ts := days(t, 3)
	c, err := New(s, ts, map[string]Column{"close": Float64Column([]float64{100, 101, 102})})
	require.NoError(t, err)

	next := ts[2].AddDate(0, 0, 1)
	require.NoError(t, c.Append(schema.Row{Timestamp: next, Values: map[string]any{"close": 103.0}}))
	assert.Equal(t, 4, c.Len())

	t.Run("equal timestamp rejected", func(t *testing.T) {
		err := c.Append(schema.Row{Timestamp: next, Values: map[string]any{"close": 104.0}})
		assert.ErrorIs(t, err, ErrNonMonotonicAppend)
		assert.Equal(t, 4, c.Len())
	})

	t.Run("older timestamp rejected", func(t *testing.T) {
		err := c.Append(schema.Row{Timestamp: ts[0], Values: map[string]any{"close": 104.0}})
		assert.ErrorIs(t, err, ErrNonMonotonicAppend)
		assert.Equal(t, 4, c.Len())
	})

	t.Run("invalid row leaves container untouched", func(t *testing.T) {
		err := c.Append(schema.Row{
			Timestamp: next.AddDate(0, 0, 1),
			Values:    map[string]any{"close": -5.0},
		})
		assert.ErrorIs(t, err, schema.ErrSchemaViolation)
		assert.Equal(t, 4, c.Len())
		closes, _ := c.Float64s("close")
		assert.Len(t, closes, 4)

		// The rejected timestamp is still available afterward.
		require.NoError(t, c.Append(schema.Row{
			Timestamp: next.AddDate(0, 0, 1),
			Values:    map[string]any{"close": 105.0},
		}))
		assert.Equal(t, 5, c.Len())
	})
}

func TestSlice(t *testing.T) {
	s := dailySchema(t)
	ts := days(t, 5)
	closes := []float64{100, 102, 99, 105, 103}
	c, err := New(s, ts, map[string]Column{"close": Float64Column(closes)})
	require.NoError(t, err)

	mid := c.Slice(ts[1], ts[3])
	assert.Equal(t, 3, mid.Len())
	got, err := mid.Float64s("close")
	require.NoError(t, err)
	assert.Equal(t, []float64{102, 99, 105}, got)

	t.Run("bounds inclusive", func(t *testing.T) {
		all := c.Slice(ts[0], ts[4])
		assert.Equal(t, 5, all.Len())
	})

	t.Run("empty window", func(t *testing.T) {
		none := c.Slice(ts[4].AddDate(0, 1, 0), ts[4].AddDate(0, 2, 0))
		assert.Equal(t, 0, none.Len())
		assert.Same(t, c.Schema(), none.Schema())
	})

	t.Run("source not aliased", func(t *testing.T) {
		next := ts[4].AddDate(0, 0, 1)
		require.NoError(t, mid.Append(schema.Row{Timestamp: next, Values: map[string]any{"close": 1.0}}))
		src, _ := c.Float64s("close")
		assert.Equal(t, []float64{100, 102, 99, 105, 103}, src)
	})
}

func TestRowMaterialization(t *testing.T) {
	s := dailySchema(t)
	ts := days(t, 2)
	c, err := New(s, ts, map[string]Column{"close": Float64Column([]float64{100, 101})})
	require.NoError(t, err)

	row := c.Row(1)
	assert.True(t, row.Timestamp.Equal(ts[1]))
	assert.Equal(t, 101.0, row.Values["close"])
}

func TestJSONRoundTrip(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, schema.RegisterBuiltins(reg))
	s, err := reg.Resolve(schema.TickTrades)
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ts := []time.Time{start, start.Add(time.Second), start.Add(3 * time.Second)}
	c, err := New(s, ts, map[string]Column{
		"price":          Float64Column([]float64{100, 100.5, 100.25}),
		"volume":         Float64Column([]float64{1, 2, 3}),
		schema.SideField: Int64Column([]int64{1, 1, -1}),
	})
	require.NoError(t, err)

	b, err := json.Marshal(c)
	require.NoError(t, err)

	back, err := Decode(b, reg)
	require.NoError(t, err)
	assert.Equal(t, c.Len(), back.Len())
	p1, _ := c.Float64s("price")
	p2, _ := back.Float64s("price")
	assert.Equal(t, p1, p2)
	s1, _ := c.Int64s(schema.SideField)
	s2, _ := back.Int64s(schema.SideField)
	assert.Equal(t, s1, s2)
}

func TestDecodeRejectsTamperedPayload(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, schema.RegisterBuiltins(reg))

	t.Run("unknown schema", func(t *testing.T) {
		_, err := Decode([]byte(`{"schema":"nope","resolution":"daily"}`), reg)
		assert.ErrorIs(t, err, schema.ErrUnknownSchema)
	})

	t.Run("resolution mismatch", func(t *testing.T) {
		_, err := Decode([]byte(`{"schema":"daily_ohlcv","resolution":"tick"}`), reg)
		assert.ErrorIs(t, err, schema.ErrSchemaViolation)
	})

	t.Run("negative price smuggled in", func(t *testing.T) {
		payload := `{"schema":"daily_ohlcv","resolution":"daily",` +
			`"timestamps":["2024-03-01T00:00:00Z"],` +
			`"float64s":{"open":[-1],"high":[1],"low":[1],"close":[1],"volume":[0]}}`
		_, err := Decode([]byte(payload), reg)
		assert.ErrorIs(t, err, schema.ErrSchemaViolation)
	})
}
