package record

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/pithecene-io/qrare/types"
)

// jsonRecord field order is the wire order.
type jsonRecord struct {
	Data        *string `json:"data"`
	ChunkIndex  *int64  `json:"chunk_index"`
	TotalChunks *int64  `json:"total_chunks"`
	Filename    *string `json:"filename"`
	FileHash    *string `json:"file_hash"`
	Version     *string `json:"version,omitempty"`
	Compression *string `json:"compression,omitempty"`
	Digest      *string `json:"digest,omitempty"`
}

type jsonCodec struct{}

func (jsonCodec) Format() string { return FormatJSON }

func (jsonCodec) Marshal(c *types.Chunk) (string, error) {
	data := base64.StdEncoding.EncodeToString(c.Payload)
	index, total := int64(c.Index), int64(c.Total)
	version := types.RecordVersion
	rec := jsonRecord{
		Data:        &data,
		ChunkIndex:  &index,
		TotalChunks: &total,
		Filename:    &c.FileName,
		FileHash:    &c.ContentHash,
		Version:     &version,
		Compression: optional(c.Transform, types.DefaultTransform),
		Digest:      optional(c.Digest, types.DefaultDigest),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&rec); err != nil {
		return "", fmt.Errorf("marshal json record: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func parseJSON(unit string) (*types.Chunk, error) {
	var rec jsonRecord
	if err := json.Unmarshal([]byte(unit), &rec); err != nil {
		return nil, malformed("record is not valid JSON", err)
	}
	if rec.Data == nil {
		return nil, missing("data")
	}
	payload, err := base64.StdEncoding.DecodeString(*rec.Data)
	if err != nil {
		return nil, malformed("data is not valid base64", err)
	}
	return fields{
		payload:     payload,
		index:       rec.ChunkIndex,
		total:       rec.TotalChunks,
		fileName:    rec.Filename,
		contentHash: rec.FileHash,
		version:     rec.Version,
		transform:   rec.Compression,
		digest:      rec.Digest,
	}.validate()
}
