// Package kafka provides a bounded replay reader over recorded topics.
// Replay is a batch fetch: it reads a closed time window and returns;
// live consumption is out of scope.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
)

// ReaderOption configures Reader.
type ReaderOption func(*ReaderConfig)

// ReaderConfig holds replay reader configuration. Replay topics are
// single-partition by convention so offset-by-time seeks stay exact.
type ReaderConfig struct {
	Brokers     []string
	Topic       string
	Partition   int
	MinBytes    int
	MaxBytes    int
	MaxMessages int
	ReadTimeout time.Duration
}

// WithBrokers sets Kafka brokers.
func WithBrokers(brokers []string) ReaderOption {
	return func(c *ReaderConfig) { c.Brokers = brokers }
}

// WithTopic sets the replay topic.
func WithTopic(topic string) ReaderOption {
	return func(c *ReaderConfig) { c.Topic = topic }
}

// WithPartition sets the partition to replay.
func WithPartition(p int) ReaderOption {
	return func(c *ReaderConfig) { c.Partition = p }
}

// WithFetch sets fetch min/max bytes.
func WithFetch(minBytes, maxBytes int) ReaderOption {
	return func(c *ReaderConfig) {
		c.MinBytes = minBytes
		c.MaxBytes = maxBytes
	}
}

// WithMaxMessages caps how many messages one replay may return.
func WithMaxMessages(n int) ReaderOption {
	return func(c *ReaderConfig) { c.MaxMessages = n }
}

// WithReadTimeout bounds a whole replay call.
func WithReadTimeout(d time.Duration) ReaderOption {
	return func(c *ReaderConfig) { c.ReadTimeout = d }
}

// Reader replays bounded windows of a recorded topic.
type Reader struct {
	cfg ReaderConfig
}

// NewReader creates a replay reader.
func NewReader(opts ...ReaderOption) (*Reader, error) {
	cfg := ReaderConfig{
		MinBytes:    1,
		MaxBytes:    10 << 20,
		MaxMessages: 1_000_000,
		ReadTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic required")
	}
	return &Reader{cfg: cfg}, nil
}

// Replay reads every message with broker timestamp in [from, to] and
// returns the raw values in offset order. The reader seeks by time, so
// repeated replays of the same window return the same messages.
func (r *Reader) Replay(ctx context.Context, from, to time.Time) ([][]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	kr := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   r.cfg.Brokers,
		Topic:     r.cfg.Topic,
		Partition: r.cfg.Partition,
		MinBytes:  r.cfg.MinBytes,
		MaxBytes:  r.cfg.MaxBytes,
	})
	defer kr.Close()

	if err := kr.SetOffsetAt(ctx, from); err != nil {
		return nil, fmt.Errorf("seek offset at %s: %w", from.Format(time.RFC3339), err)
	}

	var out [][]byte
	for len(out) < r.cfg.MaxMessages {
		msg, err := kr.ReadMessage(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if err != nil {
			// Deadline during a drained window means the replay is done.
			if ctx.Err() != nil {
				break
			}
			return nil, fmt.Errorf("read message: %w", err)
		}
		if msg.Time.After(to) {
			break
		}
		if msg.Time.Before(from) {
			continue
		}
		value := make([]byte, len(msg.Value))
		copy(value, msg.Value)
		out = append(out, value)
	}
	return out, nil
}
