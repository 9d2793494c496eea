package models

// Requests for the quant API endpoints. Defined in domain for consistency
// and reuse; defaults and validation run through pkg/http.

type SeriesRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	From       string `query:"from" json:"from" validate:"required"`
	To         string `query:"to" json:"to" validate:"required"`
	Resolution string `query:"resolution" json:"resolution" default:"daily" validate:"oneof=intraday daily"`
	ResampleTo string `query:"resample_to" json:"resample_to" validate:"omitempty,oneof=intraday daily"`
	Limit      int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}

type GenerateRequest struct {
	Model      string  `json:"model" default:"gbm" validate:"oneof=gbm jump_diffusion random_walk"`
	Drift      float64 `json:"drift"`
	Volatility float64 `json:"volatility" default:"0.2"`
	Start      float64 `json:"start" default:"100" validate:"gt=0"`
	JumpRate   float64 `json:"jump_rate"`
	JumpMean   float64 `json:"jump_mean"`
	JumpStd    float64 `json:"jump_std"`
	Steps      int     `json:"steps" default:"252" validate:"gte=1,lte=1000000"`
	Resolution string  `json:"resolution" default:"daily" validate:"oneof=tick intraday daily"`
	StartTime  string  `json:"start_time"`
	Seed       int64   `json:"seed"`
}

type SignificanceRequest struct {
	// Returns are tested directly when present; otherwise a symbol/range
	// is fetched and log returns are derived from closes.
	Returns    []float64 `json:"returns"`
	Symbol     string    `json:"symbol"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Resolution string    `json:"resolution" default:"daily" validate:"oneof=tick intraday daily"`
	Statistic  string    `json:"statistic" default:"mean" validate:"oneof=mean mean_return sharpe sharpe_ratio profit_factor"`
	N          int       `json:"n" default:"999" validate:"gte=1,lte=100000"`
	Mode       string    `json:"mode" default:"shuffle" validate:"oneof=shuffle model-based"`
	Tail       string    `json:"tail" default:"two-sided" validate:"oneof=greater less two-sided"`
	Seed       int64     `json:"seed"`
}

type TicksRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	From       string `query:"from" json:"from" validate:"required"`
	To         string `query:"to" json:"to" validate:"required"`
	ResampleTo string `query:"resample_to" json:"resample_to" validate:"omitempty,oneof=intraday daily"`
}

// SeriesResponse carries a container in its parallel-array wire form.
type SeriesResponse struct {
	Schema     string               `json:"schema"`
	Resolution string               `json:"resolution"`
	Count      int                  `json:"count"`
	Timestamps []string             `json:"timestamps"`
	Fields     map[string][]float64 `json:"fields,omitempty"`
	IntFields  map[string][]int64   `json:"int_fields,omitempty"`
}
