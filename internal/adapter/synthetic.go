package adapter

import (
	"context"

	"QuantKit/internal/container"
	"QuantKit/internal/schema"
	"QuantKit/internal/stochastic"
)

// Synthetic serves generated price paths through the adapter contract so
// downstream code can develop and test against deterministic data.
type Synthetic struct {
	reg     *schema.Registry
	model   stochastic.Model
	horizon stochastic.Horizon
	seed    int64
}

func NewSynthetic(reg *schema.Registry, model stochastic.Model, horizon stochastic.Horizon, seed int64) *Synthetic {
	return &Synthetic{reg: reg, model: model, horizon: horizon, seed: seed}
}

func (a *Synthetic) SchemaName() string {
	return schema.SyntheticPriceName(a.horizon.Resolution)
}

func (a *Synthetic) Fetch(_ context.Context) (*container.Container, error) {
	c, err := a.model.Generate(a.reg, a.horizon, a.seed)
	if err != nil {
		return nil, wrap("synthetic", err)
	}
	return c, nil
}
