package config

import (
	"fmt"
	"time"

	"github.com/pithecene-io/qrare/pipeline"
)

// Config represents a qrare.yaml configuration file.
// All values are optional and act as defaults for command flags.
// CLI flags always override config values; config values override the
// preset they name.
type Config struct {
	Preset            string        `yaml:"preset"`
	ChunkSize         *int          `yaml:"chunk_size,omitempty"`
	Compression       string        `yaml:"compression"`
	CompressionEffort *int          `yaml:"compression_effort,omitempty"`
	Digest            string        `yaml:"digest"`
	RecordFormat      string        `yaml:"record_format"`
	Carrier           string        `yaml:"carrier"`
	Parallel          *int          `yaml:"parallel,omitempty"`
	QR                QRConfig      `yaml:"qr"`
	Storage           StorageConfig `yaml:"storage"`
	Notify            NotifyConfig  `yaml:"notify"`
}

// QRConfig holds QR carrier defaults from the config file.
type QRConfig struct {
	ErrorCorrection string `yaml:"error_correction"`
	MaxVersion      *int   `yaml:"max_version,omitempty"`
	BoxSize         *int   `yaml:"box_size,omitempty"`
	QuietZone       *bool  `yaml:"quiet_zone,omitempty"`
	Foreground      string `yaml:"foreground"`
	Background      string `yaml:"background"`
}

// StorageConfig holds artifact storage defaults from the config file.
type StorageConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
	Overwrite   bool   `yaml:"overwrite"`
}

// NotifyConfig holds notification adapter defaults from the config file.
type NotifyConfig struct {
	Type         string            `yaml:"type"`
	URL          string            `yaml:"url"`
	Channel      string            `yaml:"channel,omitempty"`
	HistoryKey   string            `yaml:"history_key,omitempty"`
	HistoryLimit int               `yaml:"history_limit,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	Secret       string            `yaml:"secret,omitempty"`
	Timeout      Duration          `yaml:"timeout,omitempty"`
	Retries      *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Apply layers the file's values over base: the named preset first, then
// every explicitly set knob. A nil Config returns base unchanged.
func (c *Config) Apply(base pipeline.Config) (pipeline.Config, error) {
	if c == nil {
		return base, nil
	}
	out := base
	if c.Preset != "" {
		var err error
		if out, err = out.WithPreset(c.Preset); err != nil {
			return base, err
		}
	}

	setInt(&out.ChunkSize, c.ChunkSize)
	setInt(&out.CompressionEffort, c.CompressionEffort)
	setInt(&out.Parallel, c.Parallel)
	setString(&out.Compression, c.Compression)
	setString(&out.Digest, c.Digest)
	setString(&out.RecordFormat, c.RecordFormat)
	setString(&out.Carrier, c.Carrier)

	setString(&out.QR.Recovery, c.QR.ErrorCorrection)
	setInt(&out.QR.MaxVersion, c.QR.MaxVersion)
	setInt(&out.QR.BoxSize, c.QR.BoxSize)
	if c.QR.QuietZone != nil {
		out.QR.QuietZone = *c.QR.QuietZone
	}
	setString(&out.QR.Foreground, c.QR.Foreground)
	setString(&out.QR.Background, c.QR.Background)
	return out, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
