// Package integrity computes and verifies content digests over original,
// untransformed file bytes.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/pithecene-io/qrare/types"
)

// Digest algorithm names.
const (
	SHA256 = "sha256"
	BLAKE3 = "blake3"
)

// HashLen is the hex length of every supported digest.
const HashLen = 64

var algorithms = map[string]func([]byte) [32]byte{
	SHA256: sha256.Sum256,
	BLAKE3: blake3.Sum256,
}

// Algorithms returns the supported digest names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Supported reports whether alg names a known digest. The empty name
// selects the default.
func Supported(alg string) bool {
	_, ok := algorithms[normalize(alg)]
	return ok
}

func normalize(alg string) string {
	if alg == "" {
		return types.DefaultDigest
	}
	return alg
}

// Sum returns the lowercase hex digest of data.
func Sum(alg string, data []byte) (string, error) {
	fn, ok := algorithms[normalize(alg)]
	if !ok {
		return "", types.Validationf("digest", "unknown digest %q (must be one of %v)", alg, Algorithms())
	}
	sum := fn(data)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the digest of data and compares it with expected.
// A mismatch is a KindIntegrity error carrying both values.
func Verify(alg string, data []byte, expected string) error {
	actual, err := Sum(alg, data)
	if err != nil {
		return err
	}
	if actual != expected {
		return &types.ConversionError{
			Kind:     types.KindIntegrity,
			Op:       "verify",
			Msg:      "reconstructed content does not match the recorded " + normalize(alg) + " hash",
			Index:    types.NoIndex,
			Expected: expected,
			Actual:   actual,
		}
	}
	return nil
}

// ValidHash reports whether s is HashLen lowercase hex characters.
func ValidHash(s string) bool {
	if len(s) != HashLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
