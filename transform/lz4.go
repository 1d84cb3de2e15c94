package transform

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 is LZ4 frame compression with a content checksum.
type LZ4 struct {
	level lz4.CompressionLevel
}

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

func newLZ4(effort int) (Transform, error) {
	return &LZ4{level: lz4Levels[effort]}, nil
}

// Name implements Transform.
func (l *LZ4) Name() string { return NameLZ4 }

// Compress implements Transform.
func (l *LZ4) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(l.level), lz4.ChecksumOption(true)); err != nil {
		return nil, fmt.Errorf("lz4 writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress implements Transform.
func (l *LZ4) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, corrupt(NameLZ4, err)
	}
	return out, nil
}
