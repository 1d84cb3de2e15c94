// Package transform implements the reversible whole-payload byte transforms
// applied before chunking and after reassembly.
//
// Every transform satisfies Decompress(Compress(x)) == x for all inputs,
// including the empty slice, and is deterministic for fixed parameters.
// Decompress failures are classified as types.KindTransform.
package transform

import (
	"sort"

	"github.com/pithecene-io/qrare/types"
)

// Effort bounds. Effort is a transform-specific knob with no effect on
// wire-format correctness.
const (
	MinEffort     = 0
	MaxEffort     = 9
	DefaultEffort = 9
)

// Transform names.
const (
	NameNone = "none"
	NameZlib = "zlib"
	NameZstd = "zstd"
	NameLZ4  = "lz4"
)

// Transform is a reversible byte transform.
type Transform interface {
	// Name returns the registry name carried in transport units.
	Name() string
	// Compress transforms the whole payload.
	Compress(data []byte) ([]byte, error)
	// Decompress inverts Compress. Invalid input yields a KindTransform error.
	Decompress(data []byte) ([]byte, error)
}

type constructor func(effort int) (Transform, error)

var registry = map[string]constructor{
	NameNone: func(int) (Transform, error) { return None{}, nil },
	NameZlib: newZlib,
	NameZstd: newZstd,
	NameLZ4:  newLZ4,
}

// New returns the named transform configured with the given effort.
// Unknown names and out-of-range efforts are validation errors.
func New(name string, effort int) (Transform, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, types.Validationf("transform", "unknown compression %q (must be one of %v)", name, Names())
	}
	if effort < MinEffort || effort > MaxEffort {
		return nil, types.Validationf("transform", "compression effort must be between %d and %d, got %d",
			MinEffort, MaxEffort, effort)
	}
	return ctor(effort)
}

// ForDecode returns the named transform for decompression. Effort does
// not influence decoding, so the default is used.
func ForDecode(name string) (Transform, error) {
	if name == "" {
		name = types.DefaultTransform
	}
	return New(name, DefaultEffort)
}

// Known reports whether name is a registered transform.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names returns the registered transform names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// None is the identity transform.
type None struct{}

// Name implements Transform.
func (None) Name() string { return NameNone }

// Compress returns a copy of data.
func (None) Compress(data []byte) ([]byte, error) {
	return append([]byte{}, data...), nil
}

// Decompress returns a copy of data.
func (None) Decompress(data []byte) ([]byte, error) {
	return append([]byte{}, data...), nil
}

func corrupt(name string, err error) error {
	return types.NewError(types.KindTransform, "decompress", name+" stream is corrupt", err)
}
