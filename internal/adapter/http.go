package adapter

import (
	"context"
	"time"

	"QuantKit/internal/container"
	"QuantKit/internal/domain/models"
	"QuantKit/internal/schema"
	xhttp "QuantKit/pkg/http"
)

// httpBar is the vendor wire shape for one bar.
type httpBar struct {
	Time   string  `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

// HTTPBars fetches bars from a REST vendor endpoint returning a JSON
// array of {t,o,h,l,c,v} records with RFC3339 timestamps.
type HTTPBars struct {
	reg     *schema.Registry
	client  *xhttp.Client
	baseURL string
	desc    BarRange
}

func NewHTTPBars(reg *schema.Registry, client *xhttp.Client, baseURL string, desc BarRange) *HTTPBars {
	return &HTTPBars{reg: reg, client: client, baseURL: baseURL, desc: desc}
}

func (a *HTTPBars) SchemaName() string {
	if a.desc.Resolution == schema.Intraday {
		return schema.IntradayOHLCV
	}
	return schema.DailyOHLCV
}

func (a *HTTPBars) Fetch(ctx context.Context) (*container.Container, error) {
	if err := a.desc.validate(); err != nil {
		return nil, wrap("http", err)
	}

	var raw []httpBar
	err := a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    a.baseURL + "/bars",
		QueryParams: map[string][]string{
			"symbol":     {a.desc.Symbol},
			"from":       {a.desc.From.Format(time.RFC3339)},
			"to":         {a.desc.To.Format(time.RFC3339)},
			"resolution": {string(a.desc.Resolution)},
		},
	}, &raw)
	if err != nil {
		return nil, wrap("http", err)
	}

	bars := make([]models.Bar, 0, len(raw))
	for _, b := range raw {
		ts, perr := time.Parse(time.RFC3339, b.Time)
		if perr != nil {
			return nil, wrap("http", perr)
		}
		bars = append(bars, models.Bar{
			Bucket: ts,
			Symbol: a.desc.Symbol,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	c, err := barsContainer(a.reg, a.desc.Resolution, bars)
	if err != nil {
		return nil, wrap("http", err)
	}
	return c, nil
}
