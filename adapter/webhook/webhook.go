// Package webhook delivers conversion events as signed JSON POST
// requests.
//
// Network errors, 5xx and 429 responses are retried with capped
// exponential backoff; a Retry-After header overrides the delay. Other
// 4xx responses fail immediately.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pithecene-io/qrare/adapter"
	"github.com/pithecene-io/qrare/iox"
)

// Defaults.
const (
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 3
	// MaxBackoff caps the delay between attempts, including Retry-After.
	MaxBackoff = 30 * time.Second
)

// Request headers set on every delivery.
const (
	HeaderEvent        = "X-Qrare-Event"
	HeaderConversionID = "X-Qrare-Conversion-Id"
	// HeaderSignature carries "sha256=<hex HMAC of the body>" when a
	// secret is configured.
	HeaderSignature = "X-Qrare-Signature"
)

const signaturePrefix = "sha256="

// Config configures the webhook adapter.
type Config struct {
	// URL is the endpoint to POST to. Required.
	URL string
	// Headers are added to each request.
	Headers map[string]string
	// Secret, when set, signs each body with HMAC-SHA256.
	Secret string
	// Timeout is the per-request timeout (default 10s).
	Timeout time.Duration
	// Retries is the number of attempts after the first (default 0 when
	// built directly; the CLI applies DefaultRetries).
	Retries int
}

// Adapter publishes conversion events via HTTP POST.
type Adapter struct {
	config  Config
	client  *http.Client
	backoff func(attempt int) time.Duration
}

// New creates a webhook adapter. The URL must be absolute http or https.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook adapter requires a URL")
	}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		return nil, fmt.Errorf("webhook URL must be http or https, got %q", cfg.URL)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		backoff: exponential,
	}, nil
}

// exponential returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponential(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
	if d <= 0 || d > MaxBackoff {
		return MaxBackoff
	}
	return d
}

// Publish sends the event, retrying transient failures.
func (a *Adapter) Publish(ctx context.Context, event *adapter.ConversionCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	attempts := 1 + a.config.Retries
	var lastErr error
	var delay time.Duration
	for i := range attempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("webhook: context canceled during backoff: %w", ctx.Err())
			case <-time.After(delay):
			}
		} else if err := ctx.Err(); err != nil {
			return fmt.Errorf("webhook: context canceled: %w", err)
		}

		lastErr = a.send(ctx, event, body)
		if lastErr == nil {
			return nil
		}
		retry, wait := a.retryable(lastErr, i+1)
		if !retry {
			return fmt.Errorf("webhook: non-retriable error: %w", lastErr)
		}
		delay = wait
	}
	return fmt.Errorf("webhook: failed after %d attempts: %w", attempts, lastErr)
}

// retryable decides whether err warrants another attempt and how long
// to wait before it.
func (a *Adapter) retryable(err error, attempt int) (bool, time.Duration) {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return true, a.backoff(attempt)
	}
	switch {
	case statusErr.Code == http.StatusTooManyRequests, statusErr.Code >= 500:
		if statusErr.RetryAfter > 0 {
			return true, min(statusErr.RetryAfter, MaxBackoff)
		}
		return true, a.backoff(attempt)
	default:
		return false, 0
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	// RetryAfter is the server-requested delay, zero when absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Sign returns the signature header value for body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// verify reports whether header is a valid signature of body under
// secret.
func verify(secret string, body []byte, header string) bool {
	got, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return false
	}
	mac, err := hex.DecodeString(got)
	if err != nil {
		return false
	}
	want := hmac.New(sha256.New, []byte(secret))
	want.Write(body)
	return hmac.Equal(mac, want.Sum(nil))
}

func (a *Adapter) send(ctx context.Context, event *adapter.ConversionCompletedEvent, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, event.EventType)
	req.Header.Set(HeaderConversionID, event.ConversionID)
	if a.config.Secret != "" {
		req.Header.Set(HeaderSignature, Sign(a.config.Secret, body))
	}
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	}
	return nil
}

// retryAfter parses a delay-seconds Retry-After value.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Close releases idle connections.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
