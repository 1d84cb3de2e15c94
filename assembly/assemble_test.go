package assembly

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/pithecene-io/qrare/chunk"
	"github.com/pithecene-io/qrare/types"
)

const (
	hashA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hashB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func makeChunks(t *testing.T, name, hash string, payload []byte, size int) []types.Chunk {
	t.Helper()
	chunks, err := chunk.Split(payload, size, types.LogicalFile{
		Name:        name,
		ContentHash: hash,
		Transform:   types.DefaultTransform,
		Digest:      types.DefaultDigest,
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := range chunks {
		chunks[i].Source = chunk.ArtifactName(name, i, len(chunks), ".png")
	}
	return chunks
}

func payloadOf(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func asConversionError(t *testing.T, err error) *types.ConversionError {
	t.Helper()
	var convErr *types.ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error = %v, want *types.ConversionError", err)
	}
	if convErr.Kind != types.KindChunkConsistency {
		t.Fatalf("kind = %v, want chunk_consistency", convErr.Kind)
	}
	return convErr
}

func TestAssemble_OrderIndependent(t *testing.T) {
	payload := payloadOf(2500)
	chunks := makeChunks(t, "a.bin", hashA, payload, 300)

	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 10; trial++ {
		shuffled := slices.Clone(chunks)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := Assemble(shuffled)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if !bytes.Equal(got.Payload, payload) {
			t.Fatalf("trial %d: payload mismatch", trial)
		}
		if got.Chunks != len(chunks) || got.File.Name != "a.bin" || got.File.TransformedSize != 2500 {
			t.Errorf("trial %d: assembly = %+v", trial, got.File)
		}
	}
}

func TestAssemble_DoesNotReorderInput(t *testing.T) {
	chunks := makeChunks(t, "a.bin", hashA, payloadOf(30), 10)
	chunks[0], chunks[2] = chunks[2], chunks[0]
	if _, err := Assemble(chunks); err != nil {
		t.Fatal(err)
	}
	if chunks[0].Index != 2 {
		t.Error("Assemble reordered the caller's slice")
	}
}

func TestAssemble_SingleEmptyChunk(t *testing.T) {
	chunks := makeChunks(t, "empty", hashA, nil, 1024)
	got, err := Assemble(chunks)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Payload) != 0 {
		t.Errorf("payload len = %d, want 0", len(got.Payload))
	}
}

func TestAssemble_Empty(t *testing.T) {
	_, err := Assemble(nil)
	asConversionError(t, err)
}

func TestAssemble_MissingChunk(t *testing.T) {
	chunks := makeChunks(t, "a.bin", hashA, payloadOf(5000), 1000)
	withoutThird := append(slices.Clone(chunks[:2]), chunks[3:]...)

	_, err := Assemble(withoutThird)
	convErr := asConversionError(t, err)
	if !slices.Equal(convErr.Missing, []int{2}) {
		t.Errorf("Missing = %v, want [2]", convErr.Missing)
	}
	if !strings.Contains(convErr.Msg, "missing indices [2]") {
		t.Errorf("Msg = %q", convErr.Msg)
	}
}

func TestAssemble_CrossFileRejected(t *testing.T) {
	a := makeChunks(t, "a.bin", hashA, payloadOf(3000), 1000)
	b := makeChunks(t, "b.bin", hashB, payloadOf(3000), 1000)
	mixed := []types.Chunk{a[0], b[1], a[2]}

	_, err := Assemble(mixed)
	convErr := asConversionError(t, err)
	if convErr.Index != 1 {
		t.Errorf("Index = %d, want 1", convErr.Index)
	}
	if convErr.Artifact != b[1].Source {
		t.Errorf("Artifact = %q, want %q", convErr.Artifact, b[1].Source)
	}
	if convErr.Expected != "a.bin" || convErr.Actual != "b.bin" {
		t.Errorf("Expected/Actual = %q/%q", convErr.Expected, convErr.Actual)
	}
}

func TestAssemble_FieldMismatches(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *types.Chunk)
		field  string
	}{
		{"total", func(c *types.Chunk) { c.Total = 4 }, "total_chunks"},
		{"hash", func(c *types.Chunk) { c.ContentHash = hashB }, "file_hash"},
		{"transform", func(c *types.Chunk) { c.Transform = "zstd" }, "compression"},
		{"digest", func(c *types.Chunk) { c.Digest = "blake3" }, "digest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := makeChunks(t, "a.bin", hashA, payloadOf(3000), 1000)
			tt.mutate(&chunks[2])
			_, err := Assemble(chunks)
			convErr := asConversionError(t, err)
			if !strings.Contains(convErr.Msg, tt.field) {
				t.Errorf("Msg = %q, want mention of %s", convErr.Msg, tt.field)
			}
			if convErr.Index != 2 {
				t.Errorf("Index = %d, want 2", convErr.Index)
			}
		})
	}
}

func TestAssemble_DuplicateWithExtra(t *testing.T) {
	chunks := makeChunks(t, "a.bin", hashA, payloadOf(3000), 1000)
	chunks = append(chunks, chunks[1])

	_, err := Assemble(chunks)
	convErr := asConversionError(t, err)
	if convErr.Index != 1 {
		t.Errorf("Index = %d, want 1", convErr.Index)
	}
	if !strings.Contains(convErr.Msg, "duplicate indices [1]") {
		t.Errorf("Msg = %q", convErr.Msg)
	}
}

func TestAssemble_DuplicateReplacingMissing(t *testing.T) {
	chunks := makeChunks(t, "a.bin", hashA, payloadOf(3000), 1000)
	chunks[2] = chunks[0]

	_, err := Assemble(chunks)
	convErr := asConversionError(t, err)
	if convErr.Index != 0 {
		t.Errorf("Index = %d, want 0", convErr.Index)
	}
}

func TestAssemble_OutOfRangeIndex(t *testing.T) {
	chunks := makeChunks(t, "a.bin", hashA, payloadOf(3000), 1000)
	chunks[1].Index = 7

	_, err := Assemble(chunks)
	convErr := asConversionError(t, err)
	if convErr.Index != 7 {
		t.Errorf("Index = %d, want 7", convErr.Index)
	}
}

func TestMissingIndices(t *testing.T) {
	chunks := makeChunks(t, "a.bin", hashA, payloadOf(5000), 1000)
	got := MissingIndices([]types.Chunk{chunks[1], chunks[3]}, 5)
	if !slices.Equal(got, []int{0, 2, 4}) {
		t.Errorf("MissingIndices = %v, want [0 2 4]", got)
	}
}
