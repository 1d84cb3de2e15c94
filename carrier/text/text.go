// Package text stores transport units as plain UTF-8 text artifacts.
package text

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/pithecene-io/qrare/carrier"
)

// Name is the carrier name.
const Name = "text"

// Carrier writes each unit as a .txt artifact, byte for byte.
type Carrier struct{}

// New returns a text carrier.
func New() *Carrier { return &Carrier{} }

// Name implements carrier.Carrier.
func (*Carrier) Name() string { return Name }

// Extension implements carrier.Carrier.
func (*Carrier) Extension() string { return ".txt" }

// Render implements carrier.Carrier.
func (*Carrier) Render(ctx context.Context, unit string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(unit), nil
}

// Scan implements carrier.Carrier. Surrounding whitespace is dropped.
func (*Carrier) Scan(ctx context.Context, artifact []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !utf8.Valid(artifact) {
		return "", carrier.ErrUnreadable
	}
	unit := strings.TrimSpace(string(artifact))
	if unit == "" {
		return "", carrier.ErrNoRecord
	}
	return unit, nil
}

// Measure implements carrier.Measurer. Text artifacts are unbounded.
func (*Carrier) Measure(unit string) (carrier.Fit, error) {
	return carrier.Fit{Used: len(unit), Unit: "bytes"}, nil
}
