// Package cmd provides CLI commands for the qrare binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for commands that render output.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for the analyze command.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (analyze only)",
	}
)

// GlobalFlags returns the application-level flags.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to qrare.yaml (default: ./qrare.yaml if present)",
			EnvVars: []string{"QRARE_CONFIG"},
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log debug detail to stderr",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Log errors only",
		},
	}
}

// ReadOnlyFlags returns the shared output flags.
// Includes --tui so that unsupported commands can provide explicit error messages
// instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
	}
}

// ScanFlags returns the flags of commands that read artifacts.
func ScanFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:  "carrier",
			Usage: "Artifact carrier: qr or text",
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "Concurrent scans (default: number of CPUs)",
		},
		&cli.StringFlag{
			Name:  "from",
			Usage: "Read every artifact in storage (fs: directory, s3: bucket/prefix) instead of paths",
		},
	}, StorageFlags()...)
}

// EncodeFlags returns the conversion knobs of commands that encode.
func EncodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "preset",
			Usage: "Conversion preset: compact, fast, robust",
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Transformed bytes per artifact",
		},
		&cli.StringFlag{
			Name:  "compression",
			Usage: "Byte transform: zlib, zstd, lz4, none",
		},
		&cli.IntFlag{
			Name:  "effort",
			Usage: "Compression effort, 0-9",
		},
		&cli.StringFlag{
			Name:  "digest",
			Usage: "Content hash: sha256 or blake3",
		},
		&cli.StringFlag{
			Name:  "record-format",
			Usage: "Transport unit format: json, msgpack, cbor",
		},
		&cli.StringFlag{
			Name:  "carrier",
			Usage: "Artifact carrier: qr or text",
		},
		&cli.StringFlag{
			Name:  "error-correction",
			Usage: "QR error correction: low, medium, high, highest",
		},
		&cli.IntFlag{
			Name:  "max-version",
			Usage: "Largest QR version, 1-40",
		},
		&cli.IntFlag{
			Name:  "box-size",
			Usage: "Pixels per QR module",
		},
		&cli.BoolFlag{
			Name:  "no-quiet-zone",
			Usage: "Omit the QR quiet zone border",
		},
		&cli.StringFlag{
			Name:  "foreground",
			Usage: "QR module color (name or #rrggbb)",
		},
		&cli.StringFlag{
			Name:  "background",
			Usage: "QR background color (name or #rrggbb)",
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "Concurrent renders (default: number of CPUs)",
		},
	}
}

// StorageFlags returns the artifact storage flags.
func StorageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Artifact storage backend: fs or s3",
		},
		&cli.StringFlag{
			Name:  "s3-region",
			Usage: "AWS region for the s3 backend (optional, uses default chain)",
		},
		&cli.StringFlag{
			Name:  "s3-endpoint",
			Usage: "Custom endpoint for S3-compatible providers",
		},
		&cli.BoolFlag{
			Name:  "s3-path-style",
			Usage: "Use path-style S3 addressing",
		},
	}
}

// NotifyFlags returns the notification flags.
func NotifyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "notify-type",
			Usage: "Publish a completion event: webhook or redis",
		},
		&cli.StringFlag{
			Name:  "notify-url",
			Usage: "Webhook URL or redis:// URL for completion events",
		},
	}
}
