// Package assembly validates a set of parsed chunks and reassembles the
// transformed payload, or analyzes a set of scanned units without
// failing.
package assembly

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/pithecene-io/qrare/types"
)

// Assembly is a validated, ordered reconstruction of one file's
// transformed payload.
type Assembly struct {
	// Payload is the concatenation of chunk payloads in index order.
	Payload []byte
	// File is the validated file metadata. TransformedSize is set;
	// OriginalSize is unknown until the transform is inverted.
	File types.LogicalFile
	// Chunks is the number of chunks assembled.
	Chunks int
}

// Assemble checks that chunks form exactly one complete set and returns
// the payload in index order. Input order is irrelevant. Every failure
// is a KindChunkConsistency error naming the offending chunk or the
// missing indices.
func Assemble(chunks []types.Chunk) (*Assembly, error) {
	if len(chunks) == 0 {
		return nil, inconsistent("no chunks to assemble")
	}

	first := &chunks[0]
	for i := range chunks {
		if err := matchFirst(first, &chunks[i]); err != nil {
			return nil, err
		}
	}

	total := first.Total
	if len(chunks) < total {
		missing := MissingIndices(chunks, total)
		err := inconsistent(fmt.Sprintf("incomplete chunk set for %q: have %d of %d, missing indices %v",
			first.FileName, len(chunks), total, missing))
		err.Missing = missing
		return nil, err
	}
	if len(chunks) > total {
		dups := duplicateIndices(chunks)
		err := inconsistent(fmt.Sprintf("%d chunks for a set of %d, duplicate indices %v",
			len(chunks), total, dups))
		if len(dups) > 0 {
			err.Index = dups[0]
		}
		return nil, err
	}

	seen := make([]bool, total)
	for i := range chunks {
		c := &chunks[i]
		if c.Index < 0 || c.Index >= total {
			err := inconsistent(fmt.Sprintf("chunk index %d out of range [0, %d)", c.Index, total))
			err.Index, err.Artifact = c.Index, c.Source
			return nil, err
		}
		if seen[c.Index] {
			err := inconsistent(fmt.Sprintf("duplicate chunk index %d", c.Index))
			err.Index, err.Artifact = c.Index, c.Source
			return nil, err
		}
		seen[c.Index] = true
	}

	ordered := slices.Clone(chunks)
	slices.SortFunc(ordered, func(a, b types.Chunk) int { return a.Index - b.Index })

	size := 0
	for i := range ordered {
		size += len(ordered[i].Payload)
	}
	payload := make([]byte, 0, size)
	for i := range ordered {
		payload = append(payload, ordered[i].Payload...)
	}

	file := first.File()
	file.TransformedSize = int64(len(payload))
	return &Assembly{Payload: payload, File: file, Chunks: total}, nil
}

// matchFirst compares the identifying fields of c against first.
func matchFirst(first, c *types.Chunk) error {
	checks := []struct {
		field            string
		expected, actual string
	}{
		{"total_chunks", strconv.Itoa(first.Total), strconv.Itoa(c.Total)},
		{"filename", first.FileName, c.FileName},
		{"file_hash", first.ContentHash, c.ContentHash},
		{"compression", first.Transform, c.Transform},
		{"digest", first.Digest, c.Digest},
	}
	for _, check := range checks {
		if check.expected == check.actual {
			continue
		}
		return &types.ConversionError{
			Kind:     types.KindChunkConsistency,
			Op:       "assemble",
			Msg:      fmt.Sprintf("chunk %d does not belong to the set: %s is %q, expected %q", c.Index, check.field, check.actual, check.expected),
			Artifact: c.Source,
			Index:    c.Index,
			Expected: check.expected,
			Actual:   check.actual,
		}
	}
	return nil
}

// MissingIndices returns the indices in [0, total) not present in chunks.
func MissingIndices(chunks []types.Chunk, total int) []int {
	present := make(map[int]bool, len(chunks))
	for i := range chunks {
		present[chunks[i].Index] = true
	}
	var missing []int
	for i := 0; i < total; i++ {
		if !present[i] {
			missing = append(missing, i)
		}
	}
	return missing
}

func duplicateIndices(chunks []types.Chunk) []int {
	counts := make(map[int]int, len(chunks))
	for i := range chunks {
		counts[chunks[i].Index]++
	}
	var dups []int
	for index, n := range counts {
		if n > 1 {
			dups = append(dups, index)
		}
	}
	slices.Sort(dups)
	return dups
}

func inconsistent(msg string) *types.ConversionError {
	return types.NewError(types.KindChunkConsistency, "assemble", msg, nil)
}
