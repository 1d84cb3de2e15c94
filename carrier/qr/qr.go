// Package qr renders transport units as QR code PNG images and scans
// them back from PNG or JPEG artifacts.
package qr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // decode photographed artifacts
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"

	"github.com/pithecene-io/qrare/carrier"
	"github.com/pithecene-io/qrare/types"
)

// Name is the carrier name.
const Name = "qr"

// Version bounds defined by ISO/IEC 18004.
const (
	MinVersion = 1
	MaxVersion = 40
)

// Error correction level names.
const (
	RecoveryLow     = "low"
	RecoveryMedium  = "medium"
	RecoveryHigh    = "high"
	RecoveryHighest = "highest"
)

var recoveryLevels = map[string]qrcode.RecoveryLevel{
	RecoveryLow:     qrcode.Low,
	RecoveryMedium:  qrcode.Medium,
	RecoveryHigh:    qrcode.High,
	RecoveryHighest: qrcode.Highest,
}

// Options configures the QR carrier.
type Options struct {
	// Recovery is the error correction level.
	Recovery string `json:"error_correction" yaml:"error_correction"`
	// MaxVersion caps the symbol version chosen for a unit.
	MaxVersion int `json:"max_version" yaml:"max_version"`
	// BoxSize is the pixel size of one module.
	BoxSize int `json:"box_size" yaml:"box_size"`
	// QuietZone keeps the four-module border around the symbol.
	QuietZone bool `json:"quiet_zone" yaml:"quiet_zone"`
	// Foreground and Background are color names or #rrggbb.
	Foreground string `json:"foreground" yaml:"foreground"`
	Background string `json:"background" yaml:"background"`
}

// DefaultOptions returns the default QR options.
func DefaultOptions() Options {
	return Options{
		Recovery:   RecoveryHigh,
		MaxVersion: MaxVersion,
		BoxSize:    10,
		QuietZone:  true,
		Foreground: "black",
		Background: "white",
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if _, ok := recoveryLevels[o.Recovery]; !ok {
		return types.Validationf("qr", "error correction must be one of low, medium, high, highest, got %q", o.Recovery)
	}
	if o.MaxVersion < MinVersion || o.MaxVersion > MaxVersion {
		return types.Validationf("qr", "QR version must be between %d and %d, got %d", MinVersion, MaxVersion, o.MaxVersion)
	}
	if o.BoxSize <= 0 {
		return types.Validationf("qr", "box size must be positive, got %d", o.BoxSize)
	}
	if _, err := ParseColor(o.Foreground); err != nil {
		return types.Validationf("qr", "foreground: %v", err)
	}
	if _, err := ParseColor(o.Background); err != nil {
		return types.Validationf("qr", "background: %v", err)
	}
	return nil
}

// Carrier is a QR code carrier. It is safe for concurrent use.
type Carrier struct {
	opts  Options
	level qrcode.RecoveryLevel
	hints map[gozxing.DecodeHintType]interface{}
}

// New returns a QR carrier for validated options.
func New(opts Options) (*Carrier, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Carrier{
		opts:  opts,
		level: recoveryLevels[opts.Recovery],
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER:    true,
			gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
		},
	}, nil
}

// Name implements carrier.Carrier.
func (*Carrier) Name() string { return Name }

// Extension implements carrier.Carrier.
func (*Carrier) Extension() string { return ".png" }

// symbol sizes unit to the smallest version that fits and enforces the
// configured maximum.
func (c *Carrier) symbol(unit string) (*qrcode.QRCode, error) {
	q, err := qrcode.New(unit, c.level)
	if err != nil {
		return nil, carrier.CapacityError(Name, fmt.Sprintf("%d-byte unit does not fit any QR version at %s error correction (%v)",
			len(unit), c.opts.Recovery, err))
	}
	if q.VersionNumber > c.opts.MaxVersion {
		return nil, carrier.CapacityError(Name, fmt.Sprintf("%d-byte unit needs QR version %d, limit is %d",
			len(unit), q.VersionNumber, c.opts.MaxVersion))
	}
	return q, nil
}

// Render implements carrier.Carrier.
func (c *Carrier) Render(ctx context.Context, unit string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, err := c.symbol(unit)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = !c.opts.QuietZone
	q.ForegroundColor, _ = ParseColor(c.opts.Foreground)
	q.BackgroundColor, _ = ParseColor(c.opts.Background)

	png, err := q.PNG(-c.opts.BoxSize)
	if err != nil {
		return nil, fmt.Errorf("render QR PNG: %w", err)
	}
	return png, nil
}

// Scan implements carrier.Carrier.
func (c *Carrier) Scan(ctx context.Context, artifact []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	img, _, err := image.Decode(bytes.NewReader(artifact))
	if err != nil {
		return "", carrier.Unreadable(err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", carrier.Unreadable(err)
	}

	result, err := zxingqr.NewQRCodeReader().Decode(bmp, c.hints)
	if err != nil {
		var notFound gozxing.NotFoundException
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %v", carrier.ErrNoRecord, err)
		}
		return "", carrier.Unreadable(err)
	}
	return result.GetText(), nil
}

// Measure implements carrier.Measurer. Capacity is counted in QR
// versions.
func (c *Carrier) Measure(unit string) (carrier.Fit, error) {
	q, err := qrcode.New(unit, c.level)
	if err != nil {
		return carrier.Fit{}, carrier.CapacityError(Name, err.Error())
	}
	return carrier.Fit{Used: q.VersionNumber, Limit: c.opts.MaxVersion, Unit: "qr_version"}, nil
}
