package transform

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoder is shared across transforms. zstd.Decoder is safe for
// concurrent DecodeAll calls.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		panic("transform: zstd decoder initialization failed: " + err.Error())
	}
}

// Zstd is Zstandard compression. Effort selects an encoder speed tier.
type Zstd struct {
	encoder *zstd.Encoder
}

func newZstd(effort int) (Transform, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstdLevel(effort)),
		// Empty input must still produce a frame so it round-trips.
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	return &Zstd{encoder: encoder}, nil
}

// zstdLevel maps effort 0..9 onto the four klauspost speed tiers.
func zstdLevel(effort int) zstd.EncoderLevel {
	switch {
	case effort <= 2:
		return zstd.SpeedFastest
	case effort <= 5:
		return zstd.SpeedDefault
	case effort <= 7:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// Name implements Transform.
func (z *Zstd) Name() string { return NameZstd }

// Compress implements Transform.
func (z *Zstd) Compress(data []byte) ([]byte, error) {
	return z.encoder.EncodeAll(data, nil), nil
}

// Decompress implements Transform. Frame checksums are verified.
func (z *Zstd) Decompress(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, corrupt(NameZstd, err)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}
