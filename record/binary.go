package record

import (
	"encoding/base64"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/qrare/types"
)

// binaryRecord is the body of msgpack and cbor units.
type binaryRecord struct {
	Data        *[]byte `msgpack:"data" cbor:"data"`
	ChunkIndex  *int64  `msgpack:"chunk_index" cbor:"chunk_index"`
	TotalChunks *int64  `msgpack:"total_chunks" cbor:"total_chunks"`
	Filename    *string `msgpack:"filename" cbor:"filename"`
	FileHash    *string `msgpack:"file_hash" cbor:"file_hash"`
	Version     *string `msgpack:"version,omitempty" cbor:"version,omitempty"`
	Compression *string `msgpack:"compression,omitempty" cbor:"compression,omitempty"`
	Digest      *string `msgpack:"digest,omitempty" cbor:"digest,omitempty"`
}

func newBinaryRecord(c *types.Chunk) *binaryRecord {
	payload := c.Payload
	if payload == nil {
		payload = []byte{}
	}
	index, total := int64(c.Index), int64(c.Total)
	version := types.RecordVersion
	return &binaryRecord{
		Data:        &payload,
		ChunkIndex:  &index,
		TotalChunks: &total,
		Filename:    &c.FileName,
		FileHash:    &c.ContentHash,
		Version:     &version,
		Compression: optional(c.Transform, types.DefaultTransform),
		Digest:      optional(c.Digest, types.DefaultDigest),
	}
}

func (r *binaryRecord) chunk() (*types.Chunk, error) {
	if r.Data == nil {
		return nil, missing("data")
	}
	return fields{
		payload:     *r.Data,
		index:       r.ChunkIndex,
		total:       r.TotalChunks,
		fileName:    r.Filename,
		contentHash: r.FileHash,
		version:     r.Version,
		transform:   r.Compression,
		digest:      r.Digest,
	}.validate()
}

// envelopeCodec wraps a binary body as "qrare+<format>:<base64>".
type envelopeCodec struct {
	body binaryFormat
}

func (e envelopeCodec) Format() string { return e.body.Format() }

func (e envelopeCodec) Marshal(c *types.Chunk) (string, error) {
	body, err := e.body.encode(newBinaryRecord(c))
	if err != nil {
		return "", fmt.Errorf("marshal %s record: %w", e.body.Format(), err)
	}
	return envelopePrefix + e.body.Format() + ":" + base64.StdEncoding.EncodeToString(body), nil
}

type msgpackFormat struct{}

func (msgpackFormat) Format() string { return FormatMsgpack }

func (msgpackFormat) encode(r *binaryRecord) ([]byte, error) {
	return msgpack.Marshal(r)
}

func (msgpackFormat) decode(body []byte, r *binaryRecord) error {
	return msgpack.Unmarshal(body, r)
}

// cborEncMode uses Core Deterministic Encoding so identical chunks always
// produce identical units.
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("record: CBOR encoder initialization failed: " + err.Error())
	}
}

type cborFormat struct{}

func (cborFormat) Format() string { return FormatCBOR }

func (cborFormat) encode(r *binaryRecord) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

func (cborFormat) decode(body []byte, r *binaryRecord) error {
	return cbor.Unmarshal(body, r)
}
