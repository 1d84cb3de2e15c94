package pipeline

import (
	"github.com/pithecene-io/qrare/carrier"
	"github.com/pithecene-io/qrare/log"
	"github.com/pithecene-io/qrare/metrics"
)

type options struct {
	logger  *log.Logger
	metrics *metrics.Collector
	carrier carrier.Carrier
}

// Option configures an Encoder or Decoder.
type Option func(*options)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithCarrier replaces the carrier built from Config.Carrier.
func WithCarrier(c carrier.Carrier) Option {
	return func(o *options) { o.carrier = c }
}

func buildOptions(cfg Config, opts []Option) (options, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.carrier == nil {
		c, err := NewCarrier(cfg)
		if err != nil {
			return o, err
		}
		o.carrier = c
	}
	return o, nil
}
