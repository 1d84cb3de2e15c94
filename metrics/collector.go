// Package metrics collects per-conversion counters.
//
// The Collector accumulates counters during one encode, decode or
// analyze invocation. It is a leaf package with no internal dependencies;
// error kinds are recorded by name.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of a Collector.
type Snapshot struct {
	// Conversion lifecycle
	ConversionsStarted   int64 `json:"conversions_started" yaml:"conversions_started"`
	ConversionsCompleted int64 `json:"conversions_completed" yaml:"conversions_completed"`
	ConversionsFailed    int64 `json:"conversions_failed" yaml:"conversions_failed"`
	// FailuresByKind counts terminal failures by error kind name.
	FailuresByKind map[string]int64 `json:"failures_by_kind" yaml:"failures_by_kind"`

	// Volume
	BytesOriginal    int64 `json:"bytes_original" yaml:"bytes_original"`
	BytesTransformed int64 `json:"bytes_transformed" yaml:"bytes_transformed"`
	Chunks           int64 `json:"chunks" yaml:"chunks"`

	// Carrier
	ArtifactsRendered int64 `json:"artifacts_rendered" yaml:"artifacts_rendered"`
	ArtifactsScanned  int64 `json:"artifacts_scanned" yaml:"artifacts_scanned"`
	ScanFailures      int64 `json:"scan_failures" yaml:"scan_failures"`
	MalformedRecords  int64 `json:"malformed_records" yaml:"malformed_records"`

	// Storage
	StorageWriteSuccess int64 `json:"storage_write_success" yaml:"storage_write_success"`
	StorageWriteFailure int64 `json:"storage_write_failure" yaml:"storage_write_failure"`
	StorageReadSuccess  int64 `json:"storage_read_success" yaml:"storage_read_success"`
	StorageReadFailure  int64 `json:"storage_read_failure" yaml:"storage_read_failure"`

	// Dimensions (informational, set at construction)
	Operation      string `json:"operation" yaml:"operation"`
	Carrier        string `json:"carrier" yaml:"carrier"`
	StorageBackend string `json:"storage_backend" yaml:"storage_backend"`
	ConversionID   string `json:"conversion_id" yaml:"conversion_id"`
}

// Collector accumulates metrics during one invocation.
// Thread-safe via sync.Mutex. All methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	started        int64
	completed      int64
	failed         int64
	failuresByKind map[string]int64

	bytesOriginal    int64
	bytesTransformed int64
	chunks           int64

	rendered  int64
	scanned   int64
	scanFail  int64
	malformed int64

	writeSuccess int64
	writeFailure int64
	readSuccess  int64
	readFailure  int64

	operation      string
	carrier        string
	storageBackend string
	conversionID   string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(operation, carrier, storageBackend, conversionID string) *Collector {
	return &Collector{
		failuresByKind: make(map[string]int64),
		operation:      operation,
		carrier:        carrier,
		storageBackend: storageBackend,
		conversionID:   conversionID,
	}
}

func (c *Collector) add(field *int64, n int64) {
	c.mu.Lock()
	*field += n
	c.mu.Unlock()
}

// --- Lifecycle ---

// IncStarted records a conversion start.
func (c *Collector) IncStarted() {
	if c == nil {
		return
	}
	c.add(&c.started, 1)
}

// IncCompleted records a successful conversion.
func (c *Collector) IncCompleted() {
	if c == nil {
		return
	}
	c.add(&c.completed, 1)
}

// IncFailed records a failed conversion under the given error kind.
func (c *Collector) IncFailed(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.failed++
	c.failuresByKind[kind]++
	c.mu.Unlock()
}

// --- Volume ---

// AddBytes records original and transformed payload sizes.
func (c *Collector) AddBytes(original, transformed int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.bytesOriginal += original
	c.bytesTransformed += transformed
	c.mu.Unlock()
}

// AddChunks records chunks produced or assembled.
func (c *Collector) AddChunks(n int) {
	if c == nil {
		return
	}
	c.add(&c.chunks, int64(n))
}

// --- Carrier ---

// IncRendered records one rendered artifact.
func (c *Collector) IncRendered() {
	if c == nil {
		return
	}
	c.add(&c.rendered, 1)
}

// IncScanned records one successfully scanned and parsed artifact.
func (c *Collector) IncScanned() {
	if c == nil {
		return
	}
	c.add(&c.scanned, 1)
}

// IncScanFailure records an artifact the carrier could not read.
func (c *Collector) IncScanFailure() {
	if c == nil {
		return
	}
	c.add(&c.scanFail, 1)
}

// IncMalformed records a scanned unit that failed to parse.
func (c *Collector) IncMalformed() {
	if c == nil {
		return
	}
	c.add(&c.malformed, 1)
}

// --- Storage ---
// Storage counters are per artifact.

// IncStorageWrite records an artifact write outcome.
func (c *Collector) IncStorageWrite(ok bool) {
	if c == nil {
		return
	}
	if ok {
		c.add(&c.writeSuccess, 1)
	} else {
		c.add(&c.writeFailure, 1)
	}
}

// IncStorageRead records an artifact read outcome.
func (c *Collector) IncStorageRead(ok bool) {
	if c == nil {
		return
	}
	if ok {
		c.add(&c.readSuccess, 1)
	} else {
		c.add(&c.readFailure, 1)
	}
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byKind := make(map[string]int64, len(c.failuresByKind))
	for k, v := range c.failuresByKind {
		byKind[k] = v
	}

	return Snapshot{
		ConversionsStarted:   c.started,
		ConversionsCompleted: c.completed,
		ConversionsFailed:    c.failed,
		FailuresByKind:       byKind,

		BytesOriginal:    c.bytesOriginal,
		BytesTransformed: c.bytesTransformed,
		Chunks:           c.chunks,

		ArtifactsRendered: c.rendered,
		ArtifactsScanned:  c.scanned,
		ScanFailures:      c.scanFail,
		MalformedRecords:  c.malformed,

		StorageWriteSuccess: c.writeSuccess,
		StorageWriteFailure: c.writeFailure,
		StorageReadSuccess:  c.readSuccess,
		StorageReadFailure:  c.readFailure,

		Operation:      c.operation,
		Carrier:        c.carrier,
		StorageBackend: c.storageBackend,
		ConversionID:   c.conversionID,
	}
}
