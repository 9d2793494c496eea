package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"QuantKit/internal/domain/models"
	"QuantKit/internal/schema"
	pkgch "QuantKit/pkg/clickhouse"
	applogger "QuantKit/pkg/logger"
)

// CHBarStore implements BarStore backed by ClickHouse bar tables.
type CHBarStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client, database string) *CHBarStore {
	return &CHBarStore{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

// tableFor maps a resolution onto its bar table.
func (s *CHBarStore) tableFor(r schema.Resolution) (string, error) {
	switch r {
	case schema.Daily:
		return s.database + ".bars_1d", nil
	case schema.Intraday:
		return s.database + ".bars_1m", nil
	default:
		return "", fmt.Errorf("no bar table for resolution %q", r)
	}
}

func (s *CHBarStore) GetBars(ctx context.Context, symbol string, from, to time.Time, resolution schema.Resolution) ([]models.Bar, error) {
	start := time.Now()
	table, err := s.tableFor(resolution)
	if err != nil {
		return nil, err
	}
	const qtpl = `
		SELECT bucket, symbol, open, high, low, close, volume
		FROM %s
		WHERE symbol = ? AND bucket >= ? AND bucket <= ?
		ORDER BY bucket ASC
	`
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		s.logErr("clickhouse get_bars query error", table, symbol, resolution, err)
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 1024)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Bucket, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.logErr("clickhouse get_bars scan error", table, symbol, resolution, err)
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		s.logErr("clickhouse get_bars rows error", table, symbol, resolution, err)
		return nil, fmt.Errorf("rows: %w", err)
	}

	if s.l != nil {
		s.l.Info("clickhouse get_bars ok",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.String("resolution", string(resolution)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHBarStore) logErr(msg, table, symbol string, resolution schema.Resolution, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.String("resolution", string(resolution)),
		applogger.Error(err),
	)
}
