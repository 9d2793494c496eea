package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceFields() []FieldSpec {
	return []FieldSpec{
		{Name: "price", Type: Float64, Check: Positive},
		{Name: "volume", Type: Float64, Check: NonNegative},
	}
}

func TestNewRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name       string
		schemaName string
		resolution Resolution
		fields     []FieldSpec
	}{
		{"empty name", "", Daily, priceFields()},
		{"unknown resolution", "s", Resolution("hourly"), priceFields()},
		{"no fields", "s", Daily, nil},
		{"duplicate field", "s", Daily, []FieldSpec{
			{Name: "price", Type: Float64},
			{Name: "price", Type: Float64},
		}},
		{"unknown type", "s", Daily, []FieldSpec{{Name: "price", Type: FieldType("string")}}},
		{"tick without side", "s", Tick, priceFields()},
		{"tick side wrong type", "s", Tick, []FieldSpec{
			{Name: "price", Type: Float64},
			{Name: SideField, Type: Float64},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.schemaName, tt.resolution, tt.fields)
			assert.ErrorIs(t, err, ErrSchemaViolation)
		})
	}
}

func TestRegistryIdempotentAndConflicting(t *testing.T) {
	reg := NewRegistry()

	s1, err := reg.Register("prices", Daily, priceFields())
	require.NoError(t, err)

	// Identical layout re-registration is a no-op returning the original.
	s2, err := reg.Register("prices", Daily, priceFields())
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	// Same name, different layout.
	_, err = reg.Register("prices", Daily, []FieldSpec{{Name: "close", Type: Float64}})
	assert.ErrorIs(t, err, ErrSchemaConflict)

	// Same fields, different resolution.
	_, err = reg.Register("prices", Intraday, priceFields())
	assert.ErrorIs(t, err, ErrSchemaConflict)

	// Constraints do not participate in identity.
	loose := []FieldSpec{
		{Name: "price", Type: Float64},
		{Name: "volume", Type: Float64},
	}
	_, err = reg.Register("prices", Daily, loose)
	assert.NoError(t, err)
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownSchema)

	want, err := reg.Register("prices", Daily, priceFields())
	require.NoError(t, err)
	got, err := reg.Resolve("prices")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestValidateRow(t *testing.T) {
	s, err := New("prices", Intraday, priceFields())
	require.NoError(t, err)

	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	valid := func() Row {
		return Row{Timestamp: ts, Values: map[string]any{"price": 100.0, "volume": 5.0}}
	}

	assert.NoError(t, s.ValidateRow(valid()))

	t.Run("zero timestamp", func(t *testing.T) {
		row := valid()
		row.Timestamp = time.Time{}
		assert.ErrorIs(t, s.ValidateRow(row), ErrSchemaViolation)
	})

	t.Run("missing field", func(t *testing.T) {
		row := valid()
		delete(row.Values, "volume")
		assert.ErrorIs(t, s.ValidateRow(row), ErrSchemaViolation)
	})

	t.Run("wrong type", func(t *testing.T) {
		row := valid()
		row.Values["price"] = int64(100)
		assert.ErrorIs(t, s.ValidateRow(row), ErrSchemaViolation)
	})

	t.Run("constraint violation", func(t *testing.T) {
		row := valid()
		row.Values["price"] = -1.0
		err := s.ValidateRow(row)
		assert.ErrorIs(t, err, ErrSchemaViolation)
		var verr *ViolationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "price", verr.Field)
	})

	t.Run("extra field", func(t *testing.T) {
		row := valid()
		row.Values["bid"] = 99.0
		assert.ErrorIs(t, s.ValidateRow(row), ErrSchemaViolation)
	})
}

func TestValidateRowDailyForbidsSubDay(t *testing.T) {
	s, err := New("prices", Daily, priceFields())
	require.NoError(t, err)

	midnight := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	values := map[string]any{"price": 100.0, "volume": 5.0}

	assert.NoError(t, s.ValidateRow(Row{Timestamp: midnight, Values: values}))

	err = s.ValidateRow(Row{Timestamp: midnight.Add(9 * time.Hour), Values: values})
	assert.ErrorIs(t, err, ErrSchemaViolation)
}

func TestValidateRowTickSide(t *testing.T) {
	s, err := New("trades", Tick, TickTradeFields())
	require.NoError(t, err)

	ts := time.Date(2024, 3, 1, 10, 30, 0, 12345, time.UTC)
	row := func(side int64) Row {
		return Row{Timestamp: ts, Values: map[string]any{"price": 100.0, "volume": 1.0, SideField: side}}
	}

	assert.NoError(t, s.ValidateRow(row(1)))
	assert.NoError(t, s.ValidateRow(row(-1)))
	assert.ErrorIs(t, s.ValidateRow(row(0)), ErrSchemaViolation)
	assert.ErrorIs(t, s.ValidateRow(row(2)), ErrSchemaViolation)
}

func TestWithResolution(t *testing.T) {
	s, err := New("trades", Tick, TickTradeFields())
	require.NoError(t, err)

	same, err := s.WithResolution(Tick)
	require.NoError(t, err)
	assert.Same(t, s, same)

	coarser, err := s.WithResolution(Daily)
	require.NoError(t, err)
	assert.Equal(t, "trades_daily", coarser.Name())
	assert.Equal(t, Daily, coarser.Resolution())
	assert.Equal(t, s.NumFields(), coarser.NumFields())
}

func TestFinerThan(t *testing.T) {
	assert.True(t, Tick.FinerThan(Intraday))
	assert.True(t, Tick.FinerThan(Daily))
	assert.True(t, Intraday.FinerThan(Daily))
	assert.False(t, Daily.FinerThan(Intraday))
	assert.False(t, Daily.FinerThan(Daily))
	assert.False(t, Resolution("hourly").FinerThan(Daily))
}

func TestRegisterBuiltins(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))
	// Idempotent.
	require.NoError(t, RegisterBuiltins(reg))

	for _, name := range []string{DailyOHLCV, IntradayOHLCV, TickTrades, SyntheticPriceName(Daily)} {
		_, err := reg.Resolve(name)
		assert.NoError(t, err, name)
	}

	tick, err := reg.Resolve(SyntheticPriceName(Tick))
	require.NoError(t, err)
	_, ok := tick.Field(SideField)
	assert.True(t, ok)
}
