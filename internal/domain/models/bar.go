package models

import "time"

// Bar is one OHLCV record as stored by external sources. Adapters convert
// bars into schema-validated containers before anything downstream sees
// them.
type Bar struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Tick is one trade record from a tick source. Side is +1 for
// buyer-initiated and -1 for seller-initiated trades.
type Tick struct {
	Timestamp time.Time `json:"ts"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Side      int64     `json:"side"`
}
