// Package record serializes chunks into transport units, the
// carrier-safe strings embedded in artifacts, and parses them back.
//
// Three formats are supported. The json format is a compact JSON object:
//
//	{"data":"<base64>","chunk_index":0,"total_chunks":3,"filename":"a.bin","file_hash":"<hex>","version":"1.0"}
//
// with optional "compression" and "digest" fields emitted only when they
// differ from zlib and sha256. The msgpack and cbor formats carry the
// same fields with a raw byte payload, wrapped as "qrare+msgpack:<base64>"
// and "qrare+cbor:<base64>" so every unit stays a printable string.
package record

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pithecene-io/qrare/integrity"
	"github.com/pithecene-io/qrare/transform"
	"github.com/pithecene-io/qrare/types"
)

// Format names.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
	FormatCBOR    = "cbor"
)

// DefaultFormat is the format that also parses units written by earlier
// tools, which lack the version field and use spaced separators.
const DefaultFormat = FormatJSON

const envelopePrefix = "qrare+"

// Codec marshals chunks into transport units of one format.
type Codec interface {
	// Format returns the format name.
	Format() string
	// Marshal serializes c into a transport unit.
	Marshal(c *types.Chunk) (string, error)
}

// binaryFormat is the body encoding of an enveloped format.
type binaryFormat interface {
	Format() string
	encode(r *binaryRecord) ([]byte, error)
	decode(body []byte, r *binaryRecord) error
}

var binaryFormats = map[string]binaryFormat{
	FormatMsgpack: msgpackFormat{},
	FormatCBOR:    cborFormat{},
}

// NewCodec returns the codec for format. The empty format selects json.
func NewCodec(format string) (Codec, error) {
	if format == "" || format == FormatJSON {
		return jsonCodec{}, nil
	}
	if bf, ok := binaryFormats[format]; ok {
		return envelopeCodec{body: bf}, nil
	}
	return nil, types.Validationf("record", "unknown record format %q (must be one of %v)", format, Formats())
}

// Formats returns the supported format names.
func Formats() []string {
	return []string{FormatCBOR, FormatJSON, FormatMsgpack}
}

// Marshal serializes c in the given format.
func Marshal(format string, c *types.Chunk) (string, error) {
	codec, err := NewCodec(format)
	if err != nil {
		return "", err
	}
	return codec.Marshal(c)
}

// Parse decodes a transport unit of any supported format into a chunk.
// Every failure is a KindMalformedRecord error.
func Parse(unit string) (*types.Chunk, error) {
	trimmed := strings.TrimSpace(unit)
	if strings.HasPrefix(trimmed, "{") {
		return parseJSON(trimmed)
	}
	if rest, ok := strings.CutPrefix(trimmed, envelopePrefix); ok {
		format, b64, found := strings.Cut(rest, ":")
		if !found {
			return nil, malformed("envelope has no format separator", nil)
		}
		bf, ok := binaryFormats[format]
		if !ok {
			return nil, malformed(fmt.Sprintf("unknown record format %q", format), nil)
		}
		body, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, malformed("envelope is not valid base64", err)
		}
		var r binaryRecord
		if err := bf.decode(body, &r); err != nil {
			return nil, malformed(format+" body cannot be decoded", err)
		}
		return r.chunk()
	}
	return nil, malformed("unit is neither a JSON object nor a qrare envelope", nil)
}

// fields is the format-independent view of a decoded record. Nil
// pointers mark absent fields.
type fields struct {
	payload     []byte
	index       *int64
	total       *int64
	fileName    *string
	contentHash *string
	version     *string
	transform   *string
	digest      *string
}

func (f fields) validate() (*types.Chunk, error) {
	switch {
	case f.index == nil:
		return nil, missing("chunk_index")
	case f.total == nil:
		return nil, missing("total_chunks")
	case f.fileName == nil:
		return nil, missing("filename")
	case f.contentHash == nil:
		return nil, missing("file_hash")
	}

	total, index := *f.total, *f.index
	if total < 1 {
		return nil, malformed(fmt.Sprintf("total_chunks must be positive, got %d", total), nil)
	}
	if index < 0 || index >= total {
		return nil, malformed(fmt.Sprintf("chunk_index %d out of range [0, %d)", index, total), nil)
	}
	if !integrity.ValidHash(*f.contentHash) {
		return nil, malformed(fmt.Sprintf("file_hash must be %d lowercase hex characters", integrity.HashLen), nil)
	}
	if f.version != nil && !supportedVersion(*f.version) {
		return nil, malformed(fmt.Sprintf("unsupported record version %q", *f.version), nil)
	}

	name := types.DefaultTransform
	if f.transform != nil && *f.transform != "" {
		name = *f.transform
	}
	if !transform.Known(name) {
		return nil, malformed(fmt.Sprintf("unknown compression %q", name), nil)
	}
	digest := types.DefaultDigest
	if f.digest != nil && *f.digest != "" {
		digest = *f.digest
	}
	if !integrity.Supported(digest) {
		return nil, malformed(fmt.Sprintf("unknown digest %q", digest), nil)
	}

	payload := f.payload
	if payload == nil {
		payload = []byte{}
	}
	return &types.Chunk{
		Payload:     payload,
		Index:       int(index),
		Total:       int(total),
		FileName:    *f.fileName,
		ContentHash: *f.contentHash,
		Transform:   name,
		Digest:      digest,
	}, nil
}

// supportedVersion accepts major version 1 ("1", "1.0", "1.3").
func supportedVersion(v string) bool {
	major, _, _ := strings.Cut(v, ".")
	return major == "1"
}

// optional returns a pointer to v unless it equals the default, in which
// case the field is omitted from the record.
func optional(v, def string) *string {
	if v == "" || v == def {
		return nil
	}
	return &v
}

func malformed(msg string, err error) error {
	return types.NewError(types.KindMalformedRecord, "parse", msg, err)
}

func missing(field string) error {
	return malformed("missing required field "+field, nil)
}
