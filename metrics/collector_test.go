package metrics

import (
	"sync"
	"testing"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("encode", "qr", "fs", "conv-001")

	c.IncStarted()
	c.IncCompleted()
	c.IncFailed("integrity")
	c.IncFailed("integrity")
	c.IncFailed("transform")
	c.AddBytes(2500, 40)
	c.AddChunks(3)
	c.IncRendered()
	c.IncRendered()
	c.IncScanned()
	c.IncScanFailure()
	c.IncMalformed()
	c.IncStorageWrite(true)
	c.IncStorageWrite(false)
	c.IncStorageRead(true)
	c.IncStorageRead(true)
	c.IncStorageRead(false)

	s := c.Snapshot()

	checks := []struct {
		name      string
		got, want int64
	}{
		{"ConversionsStarted", s.ConversionsStarted, 1},
		{"ConversionsCompleted", s.ConversionsCompleted, 1},
		{"ConversionsFailed", s.ConversionsFailed, 3},
		{"FailuresByKind[integrity]", s.FailuresByKind["integrity"], 2},
		{"FailuresByKind[transform]", s.FailuresByKind["transform"], 1},
		{"BytesOriginal", s.BytesOriginal, 2500},
		{"BytesTransformed", s.BytesTransformed, 40},
		{"Chunks", s.Chunks, 3},
		{"ArtifactsRendered", s.ArtifactsRendered, 2},
		{"ArtifactsScanned", s.ArtifactsScanned, 1},
		{"ScanFailures", s.ScanFailures, 1},
		{"MalformedRecords", s.MalformedRecords, 1},
		{"StorageWriteSuccess", s.StorageWriteSuccess, 1},
		{"StorageWriteFailure", s.StorageWriteFailure, 1},
		{"StorageReadSuccess", s.StorageReadSuccess, 2},
		{"StorageReadFailure", s.StorageReadFailure, 1},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s = %d, want %d", ch.name, ch.got, ch.want)
		}
	}
}

func TestCollector_Dimensions(t *testing.T) {
	s := NewCollector("decode", "text", "s3", "conv-42").Snapshot()

	if s.Operation != "decode" {
		t.Errorf("Operation = %q, want %q", s.Operation, "decode")
	}
	if s.Carrier != "text" {
		t.Errorf("Carrier = %q, want %q", s.Carrier, "text")
	}
	if s.StorageBackend != "s3" {
		t.Errorf("StorageBackend = %q, want %q", s.StorageBackend, "s3")
	}
	if s.ConversionID != "conv-42" {
		t.Errorf("ConversionID = %q, want %q", s.ConversionID, "conv-42")
	}
}

func TestCollector_SnapshotImmutability(t *testing.T) {
	c := NewCollector("decode", "qr", "fs", "conv-001")
	c.IncScanned()
	c.IncFailed("malformed_record")

	s1 := c.Snapshot()

	c.IncScanned()
	c.IncFailed("malformed_record")

	if s1.ArtifactsScanned != 1 {
		t.Errorf("s1.ArtifactsScanned = %d, want 1 (snapshot should be frozen)", s1.ArtifactsScanned)
	}
	if s1.FailuresByKind["malformed_record"] != 1 {
		t.Errorf("s1.FailuresByKind = %v, want frozen map", s1.FailuresByKind)
	}

	s1.FailuresByKind["malformed_record"] = 999
	s2 := c.Snapshot()
	if s2.FailuresByKind["malformed_record"] != 2 {
		t.Errorf("s2.FailuresByKind[malformed_record] = %d, want 2", s2.FailuresByKind["malformed_record"])
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.IncStarted()
	c.IncCompleted()
	c.IncFailed("x")
	c.AddBytes(1, 1)
	c.AddChunks(1)
	c.IncRendered()
	c.IncScanned()
	c.IncScanFailure()
	c.IncMalformed()
	c.IncStorageWrite(true)
	c.IncStorageRead(false)

	s := c.Snapshot()
	if s.ConversionsStarted != 0 || s.FailuresByKind != nil {
		t.Errorf("nil collector snapshot = %+v", s)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	c := NewCollector("decode", "qr", "fs", "conv-001")

	var wg sync.WaitGroup
	const goroutines = 50
	const iterations = 100

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				c.IncScanned()
				c.IncStorageRead(true)
				c.IncFailed("carrier_read")
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	want := int64(goroutines * iterations)
	if s.ArtifactsScanned != want {
		t.Errorf("ArtifactsScanned = %d, want %d", s.ArtifactsScanned, want)
	}
	if s.StorageReadSuccess != want {
		t.Errorf("StorageReadSuccess = %d, want %d", s.StorageReadSuccess, want)
	}
	if s.FailuresByKind["carrier_read"] != want {
		t.Errorf("FailuresByKind[carrier_read] = %d, want %d", s.FailuresByKind["carrier_read"], want)
	}
}
