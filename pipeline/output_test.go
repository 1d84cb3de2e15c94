package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pithecene-io/qrare/chunk"
	"github.com/pithecene-io/qrare/types"
)

func TestSafeOutputPath_Suffixes(t *testing.T) {
	dir := t.TempDir()

	first, err := SafeOutputPath(dir, "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if first != filepath.Join(dir, "report.pdf") {
		t.Errorf("first = %q", first)
	}
	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	second, err := SafeOutputPath(dir, "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if second != filepath.Join(dir, "report_1.pdf") {
		t.Errorf("second = %q", second)
	}
	if err := os.WriteFile(second, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	third, _ := SafeOutputPath(dir, "report.pdf")
	if third != filepath.Join(dir, "report_2.pdf") {
		t.Errorf("third = %q", third)
	}
}

func TestSafeOutputPath_StaysInDir(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		want string
	}{
		{"../../etc/passwd", "passwd"},
		{`evil:name?.txt`, "evil_name_.txt"},
		{"..", chunk.UnnamedFile},
	}
	for _, tt := range tests {
		got, err := SafeOutputPath(dir, tt.name)
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Dir(got) != dir {
			t.Errorf("SafeOutputPath(%q) = %q escapes %q", tt.name, got, dir)
		}
		if filepath.Base(got) != tt.want {
			t.Errorf("SafeOutputPath(%q) base = %q, want %q", tt.name, filepath.Base(got), tt.want)
		}
	}
}

func TestWriteOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	result := &DecodeResult{
		State: StateVerifiedOK,
		File:  types.LogicalFile{Name: "hello.txt"},
		Data:  []byte("hello world"),
	}

	path, err := WriteOutput(result, dir, "")
	if err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	if filepath.Base(path) != "hello.txt" {
		t.Errorf("path = %q", path)
	}
	got, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(got, result.Data) {
		t.Errorf("content = %q, %v", got, err)
	}

	again, err := WriteOutput(result, dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(again) != "hello_1.txt" {
		t.Errorf("second write = %q, want hello_1.txt", again)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("dir has %d entries, want 2 (no temp files left)", len(entries))
	}
}

func TestWriteOutput_RefusesUnverified(t *testing.T) {
	dir := t.TempDir()
	for _, state := range []State{StateCollecting, StateValidated, StateDecompressed, StateVerifiedFailed} {
		result := &DecodeResult{State: state, File: types.LogicalFile{Name: "x.bin"}, Data: []byte("x")}
		if _, err := WriteOutput(result, dir, ""); !types.IsKind(err, types.KindValidation) {
			t.Errorf("state %v: error = %v, want validation", state, err)
		}
	}
	if _, err := WriteOutput(nil, dir, ""); err == nil {
		t.Error("nil result should be refused")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("refused writes left %d files", len(entries))
	}
}

func TestState_String(t *testing.T) {
	if StateVerifiedOK.String() != "verified_ok" || State(42).String() != "unknown" {
		t.Error("unexpected state names")
	}
	text, _ := StateVerifiedFailed.MarshalText()
	if string(text) != "verified_failed" {
		t.Errorf("MarshalText = %q", text)
	}
}
