// Package chunk splits a transformed payload into fixed-size indexed
// chunks and names the artifacts that carry them.
package chunk

import (
	"github.com/pithecene-io/qrare/types"
)

// count returns the number of chunks a payload of n bytes splits into.
// An empty payload still occupies one chunk.
func count(n, chunkSize int) int {
	if n == 0 {
		return 1
	}
	return (n + chunkSize - 1) / chunkSize
}

// Split cuts payload into contiguous chunks of chunkSize bytes, the last
// holding the remainder. Every chunk carries the identifying fields of
// file. Chunk payloads alias payload and must not be modified.
func Split(payload []byte, chunkSize int, file types.LogicalFile) ([]types.Chunk, error) {
	if chunkSize <= 0 {
		return nil, types.Validationf("split", "chunk size must be positive, got %d", chunkSize)
	}

	total := count(len(payload), chunkSize)
	chunks := make([]types.Chunk, total)
	for i := range chunks {
		lo := i * chunkSize
		hi := min(lo+chunkSize, len(payload))
		chunks[i] = types.Chunk{
			Payload:     payload[lo:hi:hi],
			Index:       i,
			Total:       total,
			FileName:    file.Name,
			ContentHash: file.ContentHash,
			Transform:   file.Transform,
			Digest:      file.Digest,
		}
	}
	return chunks, nil
}
