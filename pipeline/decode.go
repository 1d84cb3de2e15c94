package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pithecene-io/qrare/assembly"
	"github.com/pithecene-io/qrare/chunk"
	"github.com/pithecene-io/qrare/integrity"
	"github.com/pithecene-io/qrare/record"
	"github.com/pithecene-io/qrare/storage"
	"github.com/pithecene-io/qrare/transform"
	"github.com/pithecene-io/qrare/types"
)

// State is the progress of one decode attempt. States only advance:
// Collecting, Validated, Decompressed, then VerifiedOK or VerifiedFailed.
type State int

const (
	// StateCollecting gathers and parses transport units.
	StateCollecting State = iota
	// StateValidated means the chunk set passed assembly.
	StateValidated
	// StateDecompressed means the transform was inverted.
	StateDecompressed
	// StateVerifiedOK means the content hash matched.
	StateVerifiedOK
	// StateVerifiedFailed means the content hash did not match.
	StateVerifiedFailed
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateValidated:
		return "validated"
	case StateDecompressed:
		return "decompressed"
	case StateVerifiedOK:
		return "verified_ok"
	case StateVerifiedFailed:
		return "verified_failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON and YAML output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DecodeResult describes a decode attempt. It is returned alongside any
// error so callers can see the state reached.
type DecodeResult struct {
	State State             `json:"state" yaml:"state"`
	File  types.LogicalFile `json:"file" yaml:"file"`
	// Artifacts is the number of artifacts read.
	Artifacts int `json:"artifacts" yaml:"artifacts"`
	// Chunks is the number of chunks assembled.
	Chunks int `json:"chunks" yaml:"chunks"`
	// Data holds the verified original bytes. Nil unless State is
	// StateVerifiedOK.
	Data []byte `json:"-" yaml:"-"`
}

// Decoder reconstructs files from carrier artifacts.
type Decoder struct {
	cfg Config
	options
}

// NewDecoder validates cfg and returns a decoder. Only the carrier and
// parallelism settings affect decoding; everything else is read from the
// transport units.
func NewDecoder(cfg Config, opts ...Option) (*Decoder, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o, err := buildOptions(cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Decoder{cfg: cfg, options: o}, nil
}

// Decode reads every artifact in store and reconstructs the single file
// they encode. The first unreadable artifact or malformed record cancels
// outstanding scans and fails the decode.
func (d *Decoder) Decode(ctx context.Context, store storage.Store) (*DecodeResult, error) {
	d.metrics.IncStarted()
	result := &DecodeResult{State: StateCollecting}

	names, err := d.artifactNames(ctx, store)
	if err != nil {
		d.fail(err)
		return result, err
	}
	result.Artifacts = len(names)
	if len(names) == 0 {
		err := types.NewError(types.KindChunkConsistency, "decode",
			"no artifacts found in "+store.Location(), nil)
		d.fail(err)
		return result, err
	}

	units, err := d.scan(ctx, store, names, true)
	if err != nil {
		d.fail(err)
		d.logger.Error("scan failed", map[string]any{"error": err.Error()})
		return result, err
	}
	chunks := make([]types.Chunk, 0, len(units))
	for _, u := range units {
		chunks = append(chunks, *u.Chunk)
	}

	res, err := d.reconstruct(chunks)
	res.Artifacts = result.Artifacts
	if err != nil {
		d.fail(err)
		d.logger.Error("decode failed", map[string]any{
			"state": res.State.String(),
			"error": err.Error(),
		})
		return res, err
	}
	d.metrics.IncCompleted()
	d.logger.WithFile(res.File.Name).Info("decode verified", map[string]any{
		"chunks":        res.Chunks,
		"original_size": res.File.OriginalSize,
		"digest":        res.File.Digest,
	})
	return res, nil
}

// Reconstruct runs assembly, decompression and verification over
// already parsed chunks.
func (d *Decoder) Reconstruct(chunks []types.Chunk) (*DecodeResult, error) {
	return d.reconstruct(chunks)
}

func (d *Decoder) reconstruct(chunks []types.Chunk) (*DecodeResult, error) {
	result := &DecodeResult{State: StateCollecting}

	asm, err := assembly.Assemble(chunks)
	if err != nil {
		return result, d.describeMissing(err, chunks)
	}
	result.State = StateValidated
	result.File = asm.File
	result.Chunks = asm.Chunks
	d.metrics.AddChunks(asm.Chunks)

	tr, err := transform.ForDecode(asm.File.Transform)
	if err != nil {
		return result, err
	}
	data, err := tr.Decompress(asm.Payload)
	if err != nil {
		return result, err
	}
	result.State = StateDecompressed
	result.File.OriginalSize = int64(len(data))
	d.metrics.AddBytes(result.File.OriginalSize, result.File.TransformedSize)

	if err := integrity.Verify(asm.File.Digest, data, asm.File.ContentHash); err != nil {
		result.State = StateVerifiedFailed
		var ce *types.ConversionError
		if errors.As(err, &ce) {
			ce.Msg = fmt.Sprintf("%s for %q", ce.Msg, asm.File.Name)
		}
		return result, err
	}
	result.State = StateVerifiedOK
	result.Data = data
	return result, nil
}

const maxListedArtifacts = 10

// describeMissing appends the expected artifact names to an
// incomplete-set error.
func (d *Decoder) describeMissing(err error, chunks []types.Chunk) error {
	var ce *types.ConversionError
	if !errors.As(err, &ce) || len(ce.Missing) == 0 || len(chunks) == 0 {
		return err
	}
	first := chunks[0]
	names := make([]string, 0, min(len(ce.Missing), maxListedArtifacts))
	for _, index := range ce.Missing[:min(len(ce.Missing), maxListedArtifacts)] {
		names = append(names, chunk.ArtifactName(first.FileName, index, first.Total, d.carrier.Extension()))
	}
	msg := "expected artifacts: " + strings.Join(names, ", ")
	if extra := len(ce.Missing) - len(names); extra > 0 {
		msg += fmt.Sprintf(" and %d more", extra)
	}
	ce.Msg += "; " + msg
	return ce
}

// Analyze scans every artifact in store and reports per-file
// completeness. Unreadable artifacts are reported, not fatal.
func (d *Decoder) Analyze(ctx context.Context, store storage.Store) (assembly.Report, error) {
	names, err := d.artifactNames(ctx, store)
	if err != nil {
		return assembly.Report{}, err
	}
	units, err := d.scan(ctx, store, names, false)
	if err != nil {
		return assembly.Report{}, err
	}
	return assembly.Analyze(units), nil
}

// artifactNames lists store, keeping only files the carrier can read.
// Explicit path sets are taken as given.
func (d *Decoder) artifactNames(ctx context.Context, store storage.Store) ([]string, error) {
	names, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list artifacts in %s: %w", store.Location(), err)
	}
	if store.Backend() == storage.BackendPaths {
		return names, nil
	}
	exts := ScanExtensions(d.cfg)
	kept := names[:0]
	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		for _, want := range exts {
			if ext == want {
				kept = append(kept, name)
				break
			}
		}
	}
	return kept, nil
}

// scan reads and parses every named artifact in input order. In strict
// mode the first failure cancels the remaining work and is returned;
// otherwise failures are recorded on their units.
func (d *Decoder) scan(ctx context.Context, store storage.Store, names []string, strict bool) ([]types.ScannedUnit, error) {
	units := make([]types.ScannedUnit, len(names))
	_, err := forEach(ctx, len(names), d.cfg.workers(), strict, func(ctx context.Context, i int) error {
		units[i] = d.scanOne(ctx, store, names[i])
		return units[i].Err
	})
	if strict && err != nil {
		return nil, err
	}
	if !strict {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return units, nil
}

func (d *Decoder) scanOne(ctx context.Context, store storage.Store, name string) types.ScannedUnit {
	u := types.ScannedUnit{Artifact: name}

	data, err := store.Get(ctx, name)
	if err != nil {
		d.metrics.IncStorageRead(false)
		u.Err = carrierRead(name, "artifact cannot be read", err)
		return u
	}
	d.metrics.IncStorageRead(true)

	unit, err := d.carrier.Scan(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			u.Err = ctx.Err()
			return u
		}
		d.metrics.IncScanFailure()
		u.Err = carrierRead(name, "no transport unit could be scanned", err)
		d.logger.Debug("artifact unreadable", map[string]any{"artifact": name, "error": err.Error()})
		return u
	}

	c, err := record.Parse(unit)
	if err != nil {
		d.metrics.IncMalformed()
		var ce *types.ConversionError
		if errors.As(err, &ce) {
			ce.Artifact = name
		}
		u.Err = err
		return u
	}
	d.metrics.IncScanned()
	c.Source = name
	u.Chunk = c
	return u
}

func carrierRead(artifact, msg string, err error) error {
	ce := types.NewError(types.KindCarrierRead, "scan", msg, err)
	ce.Artifact = artifact
	return ce
}

func (d *Decoder) fail(err error) {
	d.metrics.IncFailed(types.KindOf(err).String())
}
