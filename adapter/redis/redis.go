// Package redis publishes conversion events to a Redis channel and,
// optionally, a bounded history list that History reads back.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pithecene-io/qrare/adapter"
)

// Defaults.
const (
	DefaultChannel = "qrare:conversion_completed"
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 3

	defaultHistoryLimit = 100
)

// Config configures the Redis pub/sub adapter.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default: qrare:conversion_completed).
	Channel string
	// HistoryKey, when set, names a list that receives every event,
	// newest first.
	HistoryKey string
	// HistoryLimit caps the history list length. Zero keeps 100 entries.
	HistoryLimit int
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure (default 3).
	Retries int
}

// Adapter publishes conversion events via Redis PUBLISH.
type Adapter struct {
	config Config
	client *goredis.Client
}

// New creates a Redis pub/sub adapter from the given config.
// Returns an error if the URL is empty or invalid.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.HistoryLimit < 0 {
		return nil, fmt.Errorf("history limit must be >= 0, got %d", cfg.HistoryLimit)
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}

	return &Adapter{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Publish sends the event as JSON, retrying with exponential backoff.
func (a *Adapter) Publish(ctx context.Context, event *adapter.ConversionCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	attempts := 1 + a.config.Retries
	var lastErr error
	for i := range attempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("redis: context canceled during backoff: %w", ctx.Err())
			case <-time.After(time.Duration(1<<uint(i-1)) * 500 * time.Millisecond):
			}
		} else if err := ctx.Err(); err != nil {
			return fmt.Errorf("redis: context canceled: %w", err)
		}

		publishCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		lastErr = a.send(publishCtx, body)
		cancel()
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("redis: failed after %d attempts: %w", attempts, lastErr)
}

// History returns up to n recorded events, newest first. It fails when
// no history key is configured. Entries that are not valid events are
// skipped.
func (a *Adapter) History(ctx context.Context, n int) ([]adapter.ConversionCompletedEvent, error) {
	if a.config.HistoryKey == "" {
		return nil, errors.New("redis: no history key configured")
	}
	if n <= 0 || n > a.config.HistoryLimit {
		n = a.config.HistoryLimit
	}
	raw, err := a.client.LRange(ctx, a.config.HistoryKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: read history: %w", err)
	}
	events := make([]adapter.ConversionCompletedEvent, 0, len(raw))
	for _, entry := range raw {
		var ev adapter.ConversionCompletedEvent
		if json.Unmarshal([]byte(entry), &ev) != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// send publishes body and, when configured, records it in the history
// list within one MULTI/EXEC.
func (a *Adapter) send(ctx context.Context, body []byte) error {
	if a.config.HistoryKey == "" {
		return a.client.Publish(ctx, a.config.Channel, body).Err()
	}
	_, err := a.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.LPush(ctx, a.config.HistoryKey, body)
		p.LTrim(ctx, a.config.HistoryKey, 0, int64(a.config.HistoryLimit-1))
		p.Publish(ctx, a.config.Channel, body)
		return nil
	})
	return err
}

// Close releases adapter resources.
func (a *Adapter) Close() error {
	return a.client.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)
