package integrity

import (
	"strings"
	"testing"

	"github.com/pithecene-io/qrare/types"
)

const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestSum_EmptyInput(t *testing.T) {
	got, err := Sum(SHA256, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != emptySHA256 {
		t.Errorf("Sum(sha256, empty) = %s, want %s", got, emptySHA256)
	}
}

func TestSum_DefaultIsSHA256(t *testing.T) {
	got, err := Sum("", []byte{})
	if err != nil {
		t.Fatal(err)
	}
	if got != emptySHA256 {
		t.Errorf("Sum(\"\", empty) = %s, want sha256 of empty", got)
	}
}

func TestSum_Format(t *testing.T) {
	for _, alg := range Algorithms() {
		got, err := Sum(alg, []byte("hello"))
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		if !ValidHash(got) {
			t.Errorf("%s: digest %q is not %d lowercase hex chars", alg, got, HashLen)
		}
	}
}

func TestSum_AlgorithmsDiffer(t *testing.T) {
	a, _ := Sum(SHA256, []byte("hello"))
	b, _ := Sum(BLAKE3, []byte("hello"))
	if a == b {
		t.Error("sha256 and blake3 digests should differ")
	}
}

func TestSum_UnknownAlgorithm(t *testing.T) {
	_, err := Sum("md5", []byte("x"))
	if !types.IsKind(err, types.KindValidation) {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestVerify(t *testing.T) {
	data := []byte("payload")
	for _, alg := range Algorithms() {
		sum, err := Sum(alg, data)
		if err != nil {
			t.Fatal(err)
		}
		if err := Verify(alg, data, sum); err != nil {
			t.Errorf("%s: Verify on matching data = %v", alg, err)
		}

		tampered := append([]byte{}, data...)
		tampered[0] ^= 0x01
		err = Verify(alg, tampered, sum)
		if !types.IsKind(err, types.KindIntegrity) {
			t.Fatalf("%s: Verify on tampered data = %v, want integrity", alg, err)
		}
		convErr := err.(*types.ConversionError)
		if convErr.Expected != sum {
			t.Errorf("%s: Expected = %q, want %q", alg, convErr.Expected, sum)
		}
		if convErr.Actual == sum || !ValidHash(convErr.Actual) {
			t.Errorf("%s: Actual = %q", alg, convErr.Actual)
		}
	}
}

func TestValidHash(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{emptySHA256, true},
		{strings.ToUpper(emptySHA256), false},
		{emptySHA256[:63], false},
		{emptySHA256 + "0", false},
		{strings.Repeat("g", 64), false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidHash(tt.in); got != tt.want {
			t.Errorf("ValidHash(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSupported(t *testing.T) {
	if !Supported("") || !Supported(SHA256) || !Supported(BLAKE3) {
		t.Error("expected default, sha256 and blake3 to be supported")
	}
	if Supported("crc32") {
		t.Error("crc32 should not be supported")
	}
}
