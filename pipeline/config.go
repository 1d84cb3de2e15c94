// Package pipeline orchestrates encoding a file into carrier artifacts
// and decoding artifacts back into a verified file.
package pipeline

import (
	"runtime"
	"sort"

	"github.com/pithecene-io/qrare/carrier"
	"github.com/pithecene-io/qrare/carrier/qr"
	"github.com/pithecene-io/qrare/carrier/text"
	"github.com/pithecene-io/qrare/integrity"
	"github.com/pithecene-io/qrare/record"
	"github.com/pithecene-io/qrare/transform"
	"github.com/pithecene-io/qrare/types"
)

// Chunk size limits in bytes.
const (
	MinChunkSize     = 1
	MaxChunkSize     = 10 * 1024 * 1024
	DefaultChunkSize = 1024
)

// Carrier names.
const (
	CarrierQR   = qr.Name
	CarrierText = text.Name
)

// Config is the complete set of conversion parameters. It is a plain
// value: copy it to derive variants. Encoders and decoders validate it
// once at construction.
type Config struct {
	// ChunkSize is the transformed byte count per chunk.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`
	// Compression names the byte transform.
	Compression string `json:"compression" yaml:"compression"`
	// CompressionEffort is the transform effort, 0..9.
	CompressionEffort int `json:"compression_effort" yaml:"compression_effort"`
	// Digest names the content hash algorithm.
	Digest string `json:"digest" yaml:"digest"`
	// RecordFormat names the transport unit format.
	RecordFormat string `json:"record_format" yaml:"record_format"`
	// Carrier names the artifact carrier.
	Carrier string `json:"carrier" yaml:"carrier"`
	// QR configures the QR carrier.
	QR qr.Options `json:"qr" yaml:"qr"`
	// Parallel bounds concurrent render and scan work. Zero means
	// GOMAXPROCS.
	Parallel int `json:"parallel" yaml:"parallel"`
}

// DefaultConfig returns a fresh default configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize:         DefaultChunkSize,
		Compression:       types.DefaultTransform,
		CompressionEffort: transform.DefaultEffort,
		Digest:            types.DefaultDigest,
		RecordFormat:      record.DefaultFormat,
		Carrier:           CarrierQR,
		QR:                qr.DefaultOptions(),
	}
}

// Preset adjusts a configuration for a use case.
type Preset struct {
	Name        string
	Description string
	apply       func(*Config)
}

var presets = map[string]Preset{
	"fast": {
		Name:        "fast",
		Description: "large chunks, light compression, low error correction, QR version 20",
		apply: func(c *Config) {
			c.ChunkSize = 2048
			c.CompressionEffort = 3
			c.QR.Recovery = qr.RecoveryLow
			c.QR.MaxVersion = 20
		},
	},
	"compact": {
		Name:        "compact",
		Description: "fewest artifacts: large chunks, best compression, low error correction",
		apply: func(c *Config) {
			c.ChunkSize = 2048
			c.CompressionEffort = 9
			c.QR.Recovery = qr.RecoveryLow
			c.QR.MaxVersion = 40
		},
	},
	"robust": {
		Name:        "robust",
		Description: "small chunks with high error correction for damaged or photographed prints",
		apply: func(c *Config) {
			c.ChunkSize = 512
			c.CompressionEffort = 9
			c.QR.Recovery = qr.RecoveryHigh
			c.QR.MaxVersion = 30
		},
	},
}

// Presets returns the preset names in sorted order.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WithPreset returns a copy of c adjusted by the named preset.
func (c Config) WithPreset(name string) (Config, error) {
	p, ok := presets[name]
	if !ok {
		names := make([]string, 0, len(presets))
		for n := range presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return c, types.Validationf("config", "unknown preset %q (must be one of %v)", name, names)
	}
	p.apply(&c)
	return c, nil
}

// withDefaults fills empty names with their defaults.
func (c Config) withDefaults() Config {
	if c.Compression == "" {
		c.Compression = types.DefaultTransform
	}
	if c.Digest == "" {
		c.Digest = types.DefaultDigest
	}
	if c.RecordFormat == "" {
		c.RecordFormat = record.DefaultFormat
	}
	if c.Carrier == "" {
		c.Carrier = CarrierQR
	}
	return c
}

// Validate checks every parameter against its contract.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.ChunkSize < MinChunkSize || c.ChunkSize > MaxChunkSize {
		return types.Validationf("config", "chunk_size must be between %d and %d, got %d",
			MinChunkSize, MaxChunkSize, c.ChunkSize)
	}
	if !transform.Known(c.Compression) {
		return types.Validationf("config", "compression must be one of %v, got %q", transform.Names(), c.Compression)
	}
	if c.CompressionEffort < transform.MinEffort || c.CompressionEffort > transform.MaxEffort {
		return types.Validationf("config", "compression_effort must be between %d and %d, got %d",
			transform.MinEffort, transform.MaxEffort, c.CompressionEffort)
	}
	if !integrity.Supported(c.Digest) {
		return types.Validationf("config", "digest must be one of %v, got %q", integrity.Algorithms(), c.Digest)
	}
	if _, err := record.NewCodec(c.RecordFormat); err != nil {
		return err
	}
	if c.Parallel < 0 {
		return types.Validationf("config", "parallel must not be negative, got %d", c.Parallel)
	}
	switch c.Carrier {
	case CarrierQR:
		return c.QR.Validate()
	case CarrierText:
		return nil
	default:
		return types.Validationf("config", "carrier must be %q or %q, got %q", CarrierQR, CarrierText, c.Carrier)
	}
}

func (c Config) workers() int {
	if c.Parallel > 0 {
		return c.Parallel
	}
	return runtime.GOMAXPROCS(0)
}

// NewCarrier builds the carrier named by the configuration.
func NewCarrier(c Config) (carrier.Carrier, error) {
	c = c.withDefaults()
	switch c.Carrier {
	case CarrierQR:
		return qr.New(c.QR)
	case CarrierText:
		return text.New(), nil
	default:
		return nil, types.Validationf("config", "carrier must be %q or %q, got %q", CarrierQR, CarrierText, c.Carrier)
	}
}

// ScanExtensions returns the artifact extensions the configured carrier
// can read.
func ScanExtensions(c Config) []string {
	if c.withDefaults().Carrier == CarrierText {
		return []string{".txt"}
	}
	return []string{".png", ".jpg", ".jpeg"}
}
