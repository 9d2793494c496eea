package api

import (
	"errors"
	"time"

	"QuantKit/internal/container"
	models "QuantKit/internal/domain/models"
	"QuantKit/internal/permtest"
	"QuantKit/internal/schema"
	"QuantKit/internal/usecase"
	xhttp "QuantKit/pkg/http"
	xmw "QuantKit/pkg/http/middleware"
	xlogger "QuantKit/pkg/logger"

	"github.com/labstack/echo/v4"
)

// QuantEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type QuantEchoHandler struct {
	logger       *xlogger.Logger
	series       *usecase.SeriesUseCase
	ticks        *usecase.TicksUseCase
	synthetic    *usecase.SyntheticUseCase
	significance *usecase.SignificanceUseCase
}

func NewQuantEchoHandler(
	logger *xlogger.Logger,
	series *usecase.SeriesUseCase,
	ticks *usecase.TicksUseCase,
	synthetic *usecase.SyntheticUseCase,
	significance *usecase.SignificanceUseCase,
) *QuantEchoHandler {
	return &QuantEchoHandler{
		logger:       logger,
		series:       series,
		ticks:        ticks,
		synthetic:    synthetic,
		significance: significance,
	}
}

func (h *QuantEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/series", h.Series)
	g.GET("/ticks", h.Ticks)
	g.POST("/generate", h.Generate)
	// Permutation tests burn CPU for their whole request, so they get a
	// tighter bucket than the read paths.
	g.POST("/significance", h.Significance, xmw.RateLimit(3, 1))
}

func (h *QuantEchoHandler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, ok := xhttp.ParseTime(req.From)
	if !ok {
		return xhttp.BadRequestResponse(c, "invalid from time")
	}
	to, ok := xhttp.ParseTime(req.To)
	if !ok {
		return xhttp.BadRequestResponse(c, "invalid to time")
	}

	cont, err := h.series.GetSeries(c.Request().Context(), usecase.GetSeriesParams{
		Symbol:     req.Symbol,
		From:       from,
		To:         to,
		Resolution: schema.Resolution(req.Resolution),
		ResampleTo: schema.Resolution(req.ResampleTo),
		Limit:      req.Limit,
	})
	if err != nil {
		return h.errorResponse(c, "series usecase error", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, seriesResponse(cont))
}

func (h *QuantEchoHandler) Ticks(c echo.Context) error {
	req := &models.TicksRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, ok := xhttp.ParseTime(req.From)
	if !ok {
		return xhttp.BadRequestResponse(c, "invalid from time")
	}
	to, ok := xhttp.ParseTime(req.To)
	if !ok {
		return xhttp.BadRequestResponse(c, "invalid to time")
	}

	cont, err := h.ticks.ReplayTicks(c.Request().Context(), usecase.ReplayTicksParams{
		Symbol:     req.Symbol,
		From:       from,
		To:         to,
		ResampleTo: schema.Resolution(req.ResampleTo),
	})
	if err != nil {
		return h.errorResponse(c, "ticks usecase error", err)
	}
	return xhttp.SuccessResponse(c, seriesResponse(cont))
}

func (h *QuantEchoHandler) Generate(c echo.Context) error {
	req := &models.GenerateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var startTime time.Time
	if req.StartTime != "" {
		var ok bool
		if startTime, ok = xhttp.ParseTime(req.StartTime); !ok {
			return xhttp.BadRequestResponse(c, "invalid start_time")
		}
	}

	cont, err := h.synthetic.Generate(usecase.GenerateParams{
		Model:      req.Model,
		Drift:      req.Drift,
		Volatility: req.Volatility,
		Start:      req.Start,
		JumpRate:   req.JumpRate,
		JumpMean:   req.JumpMean,
		JumpStd:    req.JumpStd,
		Steps:      req.Steps,
		Resolution: schema.Resolution(req.Resolution),
		StartTime:  startTime,
		Seed:       req.Seed,
	})
	if err != nil {
		return h.errorResponse(c, "generate usecase error", err)
	}
	return xhttp.SuccessResponse(c, seriesResponse(cont))
}

func (h *QuantEchoHandler) Significance(c echo.Context) error {
	req := &models.SignificanceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var from, to time.Time
	if len(req.Returns) == 0 {
		var ok bool
		if from, ok = xhttp.ParseTime(req.From); !ok {
			return xhttp.BadRequestResponse(c, "invalid from time")
		}
		if to, ok = xhttp.ParseTime(req.To); !ok {
			return xhttp.BadRequestResponse(c, "invalid to time")
		}
	}

	res, err := h.significance.RunTest(c.Request().Context(), usecase.RunTestParams{
		Returns:    req.Returns,
		Symbol:     req.Symbol,
		From:       from,
		To:         to,
		Resolution: schema.Resolution(req.Resolution),
		Statistic:  req.Statistic,
		N:          req.N,
		Mode:       permtest.Mode(req.Mode),
		Tail:       permtest.Tail(req.Tail),
		Seed:       req.Seed,
	})
	if err != nil {
		return h.errorResponse(c, "significance usecase error", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// errorResponse logs the failure and maps caller mistakes to 400.
func (h *QuantEchoHandler) errorResponse(c echo.Context, msg string, err error) error {
	h.logger.Error(msg, xlogger.Error(err))
	if errors.Is(err, usecase.ErrInvalidParams) {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	return xhttp.AppErrorResponse(c, err)
}

// seriesResponse flattens a container into its parallel-array response
// form.
func seriesResponse(c *container.Container) *models.SeriesResponse {
	ts := c.Timestamps()
	out := &models.SeriesResponse{
		Schema:     c.Schema().Name(),
		Resolution: string(c.Schema().Resolution()),
		Count:      c.Len(),
		Timestamps: make([]string, len(ts)),
	}
	for i, t := range ts {
		out.Timestamps[i] = t.UTC().Format(time.RFC3339Nano)
	}
	for _, f := range c.Schema().Fields() {
		if f.Type == schema.Int64 {
			vals, _ := c.Int64s(f.Name)
			if out.IntFields == nil {
				out.IntFields = map[string][]int64{}
			}
			out.IntFields[f.Name] = vals
		} else {
			vals, _ := c.Float64s(f.Name)
			if out.Fields == nil {
				out.Fields = map[string][]float64{}
			}
			out.Fields[f.Name] = vals
		}
	}
	return out
}
