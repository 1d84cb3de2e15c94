//nolint:revive // types is a common Go package naming convention
package types

// Default algorithm names. Records that omit the transform or digest
// field are interpreted with these values.
const (
	DefaultTransform = "zlib"
	DefaultDigest    = "sha256"
)

// LogicalFile describes the file being converted. It is never persisted
// as a single object; every chunk carries a copy of the identifying fields.
type LogicalFile struct {
	// Name is the original file name. Authoritative for grouping and
	// naming on reconstruction.
	Name string `json:"name" yaml:"name"`
	// ContentHash is the hex digest of the original, untransformed bytes.
	ContentHash string `json:"content_hash" yaml:"content_hash"`
	// OriginalSize is the byte count before the transform.
	OriginalSize int64 `json:"original_size" yaml:"original_size"`
	// TransformedSize is the byte count after the transform. Drives chunk count.
	TransformedSize int64 `json:"transformed_size" yaml:"transformed_size"`
	// Transform names the byte transform applied before chunking.
	Transform string `json:"transform" yaml:"transform"`
	// Digest names the algorithm that produced ContentHash.
	Digest string `json:"digest" yaml:"digest"`
}

// Chunk is one indexed byte range of the transformed payload plus the
// metadata identifying its parent file.
//
// Invariants: 0 <= Index < Total. All chunks of one reconstruction agree
// on Total, FileName, ContentHash, Transform and Digest.
type Chunk struct {
	// Payload is a contiguous range of the transformed data.
	Payload []byte
	// Index is the zero-based position among the file's chunks.
	Index int
	// Total is the chunk count of the file's set.
	Total int
	// FileName is copied from LogicalFile.Name.
	FileName string
	// ContentHash is copied from LogicalFile.ContentHash.
	ContentHash string
	// Transform is copied from LogicalFile.Transform.
	Transform string
	// Digest is copied from LogicalFile.Digest.
	Digest string
	// Source identifies the artifact the chunk was scanned from.
	// Not part of the wire format; used to attribute errors.
	Source string
}

// File returns the file-level metadata carried by the chunk. Sizes are
// unknown at chunk level and left zero.
func (c *Chunk) File() LogicalFile {
	return LogicalFile{
		Name:        c.FileName,
		ContentHash: c.ContentHash,
		Transform:   c.Transform,
		Digest:      c.Digest,
	}
}

// ScannedUnit is the outcome of reading one artifact: either a parsed
// chunk or the error that prevented it.
type ScannedUnit struct {
	// Artifact is the artifact name or path the unit came from.
	Artifact string
	// Chunk is set on success.
	Chunk *Chunk
	// Err is set on failure. Always a *ConversionError of kind
	// KindCarrierRead or KindMalformedRecord when produced by the pipeline.
	Err error
}
