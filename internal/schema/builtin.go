package schema

import "fmt"

// Canonical dataset shapes. Adapters and generators register these into the
// registry they are handed; registration is idempotent so components can
// share one registry freely.
const (
	DailyOHLCV    = "daily_ohlcv"
	IntradayOHLCV = "intraday_ohlcv"
	TickTrades    = "tick_trades"
)

// OHLCVFields returns the bar field layout shared by the daily and
// intraday OHLCV schemas.
func OHLCVFields() []FieldSpec {
	return []FieldSpec{
		{Name: "open", Type: Float64, Check: Positive},
		{Name: "high", Type: Float64, Check: Positive},
		{Name: "low", Type: Float64, Check: Positive},
		{Name: "close", Type: Float64, Check: Positive},
		{Name: "volume", Type: Float64, Check: NonNegative},
	}
}

// TickTradeFields returns the per-trade field layout for tick series.
func TickTradeFields() []FieldSpec {
	return []FieldSpec{
		{Name: "price", Type: Float64, Check: Positive},
		{Name: "volume", Type: Float64, Check: NonNegative},
		{Name: SideField, Type: Int64},
	}
}

// SyntheticPriceName returns the schema name for generated price paths at
// the given resolution.
func SyntheticPriceName(r Resolution) string {
	return fmt.Sprintf("synthetic_price_%s", r)
}

// RegisterBuiltins registers the canonical schemas plus the synthetic
// price shapes. Safe to call more than once.
func RegisterBuiltins(reg *Registry) error {
	if _, err := reg.Register(DailyOHLCV, Daily, OHLCVFields()); err != nil {
		return fmt.Errorf("register %s: %w", DailyOHLCV, err)
	}
	if _, err := reg.Register(IntradayOHLCV, Intraday, OHLCVFields()); err != nil {
		return fmt.Errorf("register %s: %w", IntradayOHLCV, err)
	}
	if _, err := reg.Register(TickTrades, Tick, TickTradeFields()); err != nil {
		return fmt.Errorf("register %s: %w", TickTrades, err)
	}
	price := []FieldSpec{{Name: "price", Type: Float64, Check: Positive}}
	for _, r := range []Resolution{Tick, Intraday, Daily} {
		if _, err := reg.Register(SyntheticPriceName(r), r, priceFieldsFor(r, price)); err != nil {
			return fmt.Errorf("register %s: %w", SyntheticPriceName(r), err)
		}
	}
	return nil
}

// priceFieldsFor appends the mandatory side field for tick-resolution
// synthetic schemas.
func priceFieldsFor(r Resolution, price []FieldSpec) []FieldSpec {
	if r != Tick {
		return price
	}
	out := make([]FieldSpec, len(price), len(price)+1)
	copy(out, price)
	return append(out, FieldSpec{Name: SideField, Type: Int64})
}
