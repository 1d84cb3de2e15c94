package cmd

import (
	"fmt"

	"github.com/pithecene-io/qrare/adapter"
	"github.com/pithecene-io/qrare/adapter/redis"
	"github.com/pithecene-io/qrare/adapter/webhook"
	"github.com/pithecene-io/qrare/cli/config"
)

// buildNotifier returns the adapter described by cfg, or nil when no
// notification is configured.
func buildNotifier(cfg config.NotifyConfig) (adapter.Adapter, error) {
	retries := webhook.DefaultRetries
	if cfg.Retries != nil {
		retries = *cfg.Retries
	}

	switch cfg.Type {
	case "":
		if cfg.URL != "" {
			return nil, fmt.Errorf("notify url %q set without notify type", cfg.URL)
		}
		return nil, nil //nolint:nilnil // no adapter configured
	case "webhook":
		return webhook.New(webhook.Config{
			URL:     cfg.URL,
			Headers: cfg.Headers,
			Secret:  cfg.Secret,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
	case "redis":
		if cfg.Retries == nil {
			retries = redis.DefaultRetries
		}
		return redis.New(redis.Config{
			URL:          cfg.URL,
			Channel:      cfg.Channel,
			HistoryKey:   cfg.HistoryKey,
			HistoryLimit: cfg.HistoryLimit,
			Timeout:      cfg.Timeout.Duration,
			Retries:      retries,
		})
	default:
		return nil, fmt.Errorf("unknown notify type %q (must be webhook or redis)", cfg.Type)
	}
}
