package transform

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Zlib is RFC 1950 zlib compression. Effort is the zlib level
// (0 stores, 9 compresses hardest).
type Zlib struct {
	level int
}

func newZlib(effort int) (Transform, error) {
	return &Zlib{level: effort}, nil
}

// Name implements Transform.
func (z *Zlib) Name() string { return NameZlib }

// Compress implements Transform.
func (z *Zlib) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, z.level)
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress implements Transform. The zlib header and Adler-32 trailer
// are verified by the reader.
func (z *Zlib) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, corrupt(NameZlib, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		_ = r.Close()
		return nil, corrupt(NameZlib, err)
	}
	if err := r.Close(); err != nil {
		return nil, corrupt(NameZlib, err)
	}
	return out, nil
}
