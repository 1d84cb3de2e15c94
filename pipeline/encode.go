package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/pithecene-io/qrare/carrier"
	"github.com/pithecene-io/qrare/chunk"
	"github.com/pithecene-io/qrare/integrity"
	"github.com/pithecene-io/qrare/record"
	"github.com/pithecene-io/qrare/storage"
	"github.com/pithecene-io/qrare/transform"
	"github.com/pithecene-io/qrare/types"
)

// Encoder converts files into carrier artifacts.
type Encoder struct {
	cfg   Config
	tr    transform.Transform
	codec record.Codec
	options
}

// NewEncoder validates cfg and returns an encoder.
func NewEncoder(cfg Config, opts ...Option) (*Encoder, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tr, err := transform.New(cfg.Compression, cfg.CompressionEffort)
	if err != nil {
		return nil, err
	}
	codec, err := record.NewCodec(cfg.RecordFormat)
	if err != nil {
		return nil, err
	}
	o, err := buildOptions(cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Encoder{cfg: cfg, tr: tr, codec: codec, options: o}, nil
}

// Config returns the encoder's configuration.
func (e *Encoder) Config() Config { return e.cfg }

// plan is the carrier-independent result of preparing a file.
type plan struct {
	file  types.LogicalFile
	units []string
}

func (e *Encoder) prepare(name string, data []byte) (*plan, error) {
	hash, err := integrity.Sum(e.cfg.Digest, data)
	if err != nil {
		return nil, err
	}
	compressed, err := e.tr.Compress(data)
	if err != nil {
		return nil, types.NewError(types.KindTransform, "compress", e.tr.Name()+" compression failed", err)
	}

	file := types.LogicalFile{
		Name:            name,
		ContentHash:     hash,
		OriginalSize:    int64(len(data)),
		TransformedSize: int64(len(compressed)),
		Transform:       e.tr.Name(),
		Digest:          e.cfg.Digest,
	}
	chunks, err := chunk.Split(compressed, e.cfg.ChunkSize, file)
	if err != nil {
		return nil, err
	}

	units := make([]string, len(chunks))
	for i := range chunks {
		units[i], err = e.codec.Marshal(&chunks[i])
		if err != nil {
			return nil, err
		}
	}
	return &plan{file: file, units: units}, nil
}

// EncodeResult describes a completed encode.
type EncodeResult struct {
	File types.LogicalFile `json:"file" yaml:"file"`
	// Artifacts lists artifact names in chunk order.
	Artifacts    []string `json:"artifacts" yaml:"artifacts"`
	Chunks       int      `json:"chunks" yaml:"chunks"`
	Carrier      string   `json:"carrier" yaml:"carrier"`
	RecordFormat string   `json:"record_format" yaml:"record_format"`
	Location     string   `json:"location" yaml:"location"`
	// Ratio is transformed size over original size.
	Ratio float64 `json:"compression_ratio" yaml:"compression_ratio"`
}

// Encode converts data, the contents of the file called name, into
// artifacts written to store. Rendering runs in parallel; the first
// failure cancels outstanding work.
func (e *Encoder) Encode(ctx context.Context, name string, data []byte, store storage.Store) (*EncodeResult, error) {
	logger := e.logger.WithFile(name)
	e.metrics.IncStarted()

	p, err := e.prepare(name, data)
	if err != nil {
		e.fail(err)
		return nil, err
	}
	e.metrics.AddBytes(p.file.OriginalSize, p.file.TransformedSize)
	e.metrics.AddChunks(len(p.units))

	result := &EncodeResult{
		File:         p.file,
		Artifacts:    make([]string, len(p.units)),
		Chunks:       len(p.units),
		Carrier:      e.carrier.Name(),
		RecordFormat: e.codec.Format(),
		Location:     store.Location(),
		Ratio:        ratio(p.file),
	}
	logger.Info("payload prepared", map[string]any{
		"original_size":     p.file.OriginalSize,
		"transformed_size":  p.file.TransformedSize,
		"compression":       p.file.Transform,
		"compression_ratio": fmt.Sprintf("%.3f", result.Ratio),
		"chunks":            len(p.units),
	})

	total := len(p.units)
	_, err = forEach(ctx, total, e.cfg.workers(), true, func(ctx context.Context, i int) error {
		artifact, err := e.carrier.Render(ctx, p.units[i])
		if err != nil {
			return attribute(err, i)
		}
		e.metrics.IncRendered()

		artName := chunk.ArtifactName(name, i, total, e.carrier.Extension())
		if err := store.Put(ctx, artName, artifact); err != nil {
			e.metrics.IncStorageWrite(false)
			return fmt.Errorf("store artifact %s: %w", artName, err)
		}
		e.metrics.IncStorageWrite(true)
		result.Artifacts[i] = artName
		logger.Debug("artifact written", map[string]any{"artifact": artName, "chunk_index": i})
		return nil
	})
	if err != nil {
		e.fail(err)
		logger.Error("encode failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	e.metrics.IncCompleted()
	logger.Info("encode complete", map[string]any{
		"artifacts": total,
		"location":  result.Location,
	})
	return result, nil
}

// Estimate reports what encoding data would produce without rendering
// or writing anything.
type Estimate struct {
	File      types.LogicalFile `json:"file" yaml:"file"`
	Chunks    int               `json:"chunks" yaml:"chunks"`
	ChunkSize int               `json:"chunk_size" yaml:"chunk_size"`
	// LargestUnit is the byte length of the longest transport unit.
	LargestUnit int    `json:"largest_unit" yaml:"largest_unit"`
	Carrier     string `json:"carrier" yaml:"carrier"`
	// Fit is the carrier capacity used by the largest unit, when the
	// carrier can measure it.
	Fit  *carrier.Fit `json:"fit,omitempty" yaml:"fit,omitempty"`
	Fits bool         `json:"fits" yaml:"fits"`
	// Problem explains why the largest unit does not fit.
	Problem string  `json:"problem,omitempty" yaml:"problem,omitempty"`
	Ratio   float64 `json:"compression_ratio" yaml:"compression_ratio"`
}

// Estimate computes the exact chunk count and carrier fit for data.
func (e *Encoder) Estimate(name string, data []byte) (*Estimate, error) {
	p, err := e.prepare(name, data)
	if err != nil {
		return nil, err
	}

	largest := p.units[0]
	for _, u := range p.units[1:] {
		if len(u) > len(largest) {
			largest = u
		}
	}
	est := &Estimate{
		File:        p.file,
		Chunks:      len(p.units),
		ChunkSize:   e.cfg.ChunkSize,
		LargestUnit: len(largest),
		Carrier:     e.carrier.Name(),
		Fits:        true,
		Ratio:       ratio(p.file),
	}
	if m, ok := e.carrier.(carrier.Measurer); ok {
		fit, err := m.Measure(largest)
		if err != nil {
			est.Fits = false
			est.Problem = err.Error()
			return est, nil
		}
		est.Fit = &fit
		if fit.Limit > 0 && fit.Used > fit.Limit {
			est.Fits = false
			est.Problem = fmt.Sprintf("largest unit needs %d %s, limit is %d", fit.Used, fit.Unit, fit.Limit)
		}
	}
	return est, nil
}

func (e *Encoder) fail(err error) {
	e.metrics.IncFailed(types.KindOf(err).String())
}

func ratio(f types.LogicalFile) float64 {
	if f.OriginalSize == 0 {
		return 1
	}
	return float64(f.TransformedSize) / float64(f.OriginalSize)
}

// attribute sets the chunk index on a ConversionError lacking one.
func attribute(err error, index int) error {
	var ce *types.ConversionError
	if errors.As(err, &ce) && ce.Index == types.NoIndex {
		ce.Index = index
	}
	return err
}
