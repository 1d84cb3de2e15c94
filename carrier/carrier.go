// Package carrier defines how transport units are rendered into storable
// artifacts and scanned back.
package carrier

import (
	"context"
	"errors"
	"fmt"

	"github.com/pithecene-io/qrare/types"
)

// Scan and render conditions. Implementations wrap these so callers can
// test with errors.Is.
var (
	// ErrNoRecord means the artifact was readable but held no record.
	ErrNoRecord = errors.New("no record found in artifact")
	// ErrUnreadable means the artifact could not be decoded at all.
	ErrUnreadable = errors.New("artifact cannot be decoded")
	// ErrCapacity means a unit does not fit the carrier's configured limit.
	ErrCapacity = errors.New("transport unit exceeds carrier capacity")
)

// Carrier renders transport units into artifacts and scans them back.
// Render must preserve the unit exactly; Scan(Render(u)) == u.
type Carrier interface {
	// Name returns the carrier name.
	Name() string
	// Extension returns the artifact file extension, including the dot.
	Extension() string
	// Render encodes unit into an artifact. A unit that does not fit
	// fails with a KindValidation error wrapping ErrCapacity.
	Render(ctx context.Context, unit string) ([]byte, error)
	// Scan extracts the unit from an artifact. Failures wrap ErrNoRecord
	// or ErrUnreadable.
	Scan(ctx context.Context, artifact []byte) (string, error)
}

// Fit describes how much of a carrier's capacity one unit uses.
type Fit struct {
	// Used is the capacity consumed, in the carrier's unit.
	Used int `json:"used" yaml:"used"`
	// Limit is the configured maximum, or 0 for unbounded carriers.
	Limit int `json:"limit" yaml:"limit"`
	// Unit names what Used and Limit count.
	Unit string `json:"unit" yaml:"unit"`
}

// Headroom returns Limit - Used, or -1 when the carrier is unbounded.
func (f Fit) Headroom() int {
	if f.Limit == 0 {
		return -1
	}
	return f.Limit - f.Used
}

// Measurer is implemented by carriers that can report capacity use
// without producing an artifact.
type Measurer interface {
	Measure(unit string) (Fit, error)
}

// CapacityError builds the error returned when a unit does not fit.
func CapacityError(carrier string, detail string) error {
	return types.NewError(types.KindValidation, "render",
		carrier+" capacity exceeded: "+detail+"; reduce chunk_size or raise the carrier limit",
		ErrCapacity)
}

// Unreadable wraps a decoding failure with ErrUnreadable.
func Unreadable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnreadable, err)
}
