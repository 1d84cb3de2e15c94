//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies conversion failures.
type ErrorKind int

const (
	// KindUnknown is reported by KindOf for errors outside the taxonomy.
	KindUnknown ErrorKind = iota
	// KindValidation indicates a caller-supplied parameter violates its contract.
	KindValidation
	// KindCarrierRead indicates an artifact could not be scanned into a string.
	KindCarrierRead
	// KindMalformedRecord indicates a scanned string is not a valid transport unit.
	KindMalformedRecord
	// KindChunkConsistency indicates parsed chunks violate an assembly invariant.
	KindChunkConsistency
	// KindTransform indicates the byte transform rejected its input.
	KindTransform
	// KindIntegrity indicates a content hash mismatch after reconstruction.
	KindIntegrity
)

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindCarrierRead:
		return "carrier_read"
	case KindMalformedRecord:
		return "malformed_record"
	case KindChunkConsistency:
		return "chunk_consistency"
	case KindTransform:
		return "transform"
	case KindIntegrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// NoIndex marks ConversionError.Index as not applicable.
const NoIndex = -1

// ConversionError is a classified failure with structured context.
// Fields beyond Kind and Msg are optional and depend on the kind.
type ConversionError struct {
	Kind ErrorKind
	// Op is the operation that failed (e.g. "parse", "assemble").
	Op string
	// Msg is a human-readable description.
	Msg string
	// Artifact names the offending artifact, if known.
	Artifact string
	// Index is the offending chunk index, or NoIndex.
	Index int
	// Missing lists absent chunk indices for incomplete sets.
	Missing []int
	// Expected and Actual hold mismatched values (hashes, totals, names).
	Expected string
	Actual   string
	// Err is the underlying cause.
	Err error
}

func (e *ConversionError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Artifact != "" {
		fmt.Fprintf(&b, " (artifact %s)", e.Artifact)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewError creates a ConversionError with no index context.
func NewError(kind ErrorKind, op, msg string, err error) *ConversionError {
	return &ConversionError{
		Kind:  kind,
		Op:    op,
		Msg:   msg,
		Index: NoIndex,
		Err:   err,
	}
}

// Validationf creates a KindValidation error with a formatted message.
func Validationf(op, format string, args ...any) *ConversionError {
	return NewError(KindValidation, op, fmt.Sprintf(format, args...), nil)
}

// KindOf returns the kind of the first ConversionError in err's chain,
// or KindUnknown.
func KindOf(err error) ErrorKind {
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return convErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries a ConversionError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
