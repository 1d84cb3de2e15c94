package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/assembly"
	"github.com/pithecene-io/qrare/pipeline"
	"github.com/pithecene-io/qrare/types"
)

func TestReadOnlyFlags_IncludesTUI(t *testing.T) {
	flags := ReadOnlyFlags()

	hasTUI := false
	for _, f := range flags {
		if f.Names()[0] == "tui" {
			hasTUI = true
			break
		}
	}

	if !hasTUI {
		t.Error("ReadOnlyFlags should include --tui flag for explicit error handling")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"validation", types.Validationf("config", "bad"), 2},
		{"carrier read", types.NewError(types.KindCarrierRead, "scan", "blank", nil), 3},
		{"malformed", types.NewError(types.KindMalformedRecord, "parse", "bad", nil), 4},
		{"consistency", types.NewError(types.KindChunkConsistency, "assemble", "missing", nil), 5},
		{"transform", types.NewError(types.KindTransform, "decompress", "corrupt", nil), 6},
		{"integrity", types.NewError(types.KindIntegrity, "verify", "mismatch", nil), 7},
		{"wrapped", fmt.Errorf("decode: %w", types.NewError(types.KindIntegrity, "verify", "x", nil)), 7},
		{"exit coder", cli.Exit("custom", 9), 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	if exitError(nil) != nil {
		t.Error("exitError(nil) should be nil")
	}
	err := exitError(types.NewError(types.KindChunkConsistency, "assemble", "missing chunks", nil))
	var exitCoder cli.ExitCoder
	if !errors.As(err, &exitCoder) {
		t.Fatalf("exitError should return a cli.ExitCoder, got %T", err)
	}
	if exitCoder.ExitCode() != exitConsistency {
		t.Errorf("ExitCode = %d, want %d", exitCoder.ExitCode(), exitConsistency)
	}
	if !strings.Contains(err.Error(), "missing chunks") {
		t.Errorf("message = %q", err.Error())
	}
}

// runApp runs the CLI in an isolated working directory and returns
// stdout and the action error.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := NewApp("test")
	app.Writer = &buf
	app.ErrWriter = &bytes.Buffer{}
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"qrare", "--quiet"}, args...))
	return buf.String(), err
}

// isolate moves the test into a fresh directory so no qrare.yaml is
// picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("QRARE_CONFIG", "")
	return dir
}

func writeInput(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func patterned(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return data
}

func encodeText(t *testing.T, input, out string) pipeline.EncodeResult {
	t.Helper()
	stdout, err := runApp(t, "encode", "--carrier", "text", "--compression", "none",
		"--chunk-size", "100", "--format", "json", "--out", out, input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var res pipeline.EncodeResult
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("encode output %q: %v", stdout, err)
	}
	return res
}

func TestEncodeDecode_Text(t *testing.T) {
	dir := isolate(t)
	data := patterned(250)
	input := writeInput(t, dir, "payload.bin", data)
	artifacts := filepath.Join(dir, "artifacts")

	res := encodeText(t, input, artifacts)
	if res.Chunks != 3 || len(res.Artifacts) != 3 {
		t.Fatalf("encode result = %+v", res)
	}
	if res.File.Name != "payload.bin" {
		t.Errorf("file name = %q", res.File.Name)
	}
	if _, err := os.Stat(filepath.Join(artifacts, "payload.bin_chunk_1_of_3.txt")); err != nil {
		t.Errorf("first artifact missing: %v", err)
	}

	restored := filepath.Join(dir, "restored")
	stdout, err := runApp(t, "decode", "--carrier", "text", "--format", "json", "--out", restored, artifacts)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var resp struct {
		State  string `json:"state"`
		Chunks int    `json:"chunks"`
		Output string `json:"output"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("decode output %q: %v", stdout, err)
	}
	if resp.State != "verified_ok" || resp.Chunks != 3 {
		t.Errorf("decode response = %+v", resp)
	}
	got, err := os.ReadFile(resp.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("restored bytes differ from input")
	}
	if filepath.Dir(resp.Output) != restored {
		t.Errorf("output = %q, want inside %q", resp.Output, restored)
	}
}

func TestEncode_NameOverride(t *testing.T) {
	dir := isolate(t)
	input := writeInput(t, dir, "in.bin", patterned(10))
	stdout, err := runApp(t, "encode", "--carrier", "text", "--name", "renamed.dat",
		"--format", "json", "--out", filepath.Join(dir, "a"), input)
	if err != nil {
		t.Fatal(err)
	}
	var res pipeline.EncodeResult
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatal(err)
	}
	if res.File.Name != "renamed.dat" {
		t.Errorf("file name = %q, want renamed.dat", res.File.Name)
	}
}

func TestEncode_RefusesExistingArtifacts(t *testing.T) {
	dir := isolate(t)
	input := writeInput(t, dir, "in.bin", patterned(10))
	out := filepath.Join(dir, "a")
	encodeText(t, input, out)

	_, err := runApp(t, "encode", "--carrier", "text", "--compression", "none",
		"--chunk-size", "100", "--out", out, input)
	if err == nil {
		t.Fatal("second encode without --overwrite should fail")
	}

	if _, err := runApp(t, "encode", "--carrier", "text", "--compression", "none",
		"--chunk-size", "100", "--overwrite", "--out", out, input); err != nil {
		t.Errorf("encode --overwrite: %v", err)
	}
}

func TestEncode_ArgumentErrors(t *testing.T) {
	dir := isolate(t)
	input := writeInput(t, dir, "in.bin", patterned(10))

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"encode", "--out", dir}},
		{"missing input", []string{"encode", "--out", dir, filepath.Join(dir, "nope.bin")}},
		{"bad chunk size", []string{"encode", "--chunk-size", "0", "--out", dir, input}},
		{"bad compression", []string{"encode", "--compression", "brotli", "--out", dir, input}},
		{"bad preset", []string{"encode", "--preset", "turbo", "--out", dir, input}},
		{"no location", []string{"encode", input}},
		{"tui", []string{"encode", "--tui", "--out", dir, input}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			if got := ExitCode(err); got != exitValidation {
				t.Errorf("exit code = %d (%v), want %d", got, err, exitValidation)
			}
		})
	}
}

func TestDecode_MissingArtifact(t *testing.T) {
	dir := isolate(t)
	input := writeInput(t, dir, "payload.bin", patterned(250))
	artifacts := filepath.Join(dir, "artifacts")
	encodeText(t, input, artifacts)

	if err := os.Remove(filepath.Join(artifacts, "payload.bin_chunk_2_of_3.txt")); err != nil {
		t.Fatal(err)
	}

	restored := filepath.Join(dir, "restored")
	_, err := runApp(t, "decode", "--carrier", "text", "--out", restored, artifacts)
	if got := ExitCode(err); got != exitConsistency {
		t.Fatalf("exit code = %d (%v), want %d", got, err, exitConsistency)
	}
	if _, statErr := os.Stat(filepath.Join(restored, "payload.bin")); !os.IsNotExist(statErr) {
		t.Error("no output should be written for an incomplete set")
	}
}

func TestDecode_NoArtifacts(t *testing.T) {
	dir := isolate(t)
	empty := filepath.Join(dir, "empty")
	if err := os.Mkdir(empty, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{"decode"}},
		{"empty dir", []string{"decode", "--carrier", "text", empty}},
		{"from and args", []string{"decode", "--from", empty, empty}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			if got := ExitCode(err); got != exitValidation {
				t.Errorf("exit code = %d (%v), want %d", got, err, exitValidation)
			}
		})
	}
}

func TestDecode_FromStorage(t *testing.T) {
	dir := isolate(t)
	data := patterned(120)
	input := writeInput(t, dir, "doc.txt", data)
	artifacts := filepath.Join(dir, "artifacts")
	encodeText(t, input, artifacts)

	restored := filepath.Join(dir, "restored")
	if _, err := runApp(t, "decode", "--carrier", "text", "--from", artifacts, "--out", restored); err != nil {
		t.Fatalf("decode --from: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(restored, "doc.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("restored bytes differ from input")
	}
}

func TestAnalyze(t *testing.T) {
	dir := isolate(t)
	input := writeInput(t, dir, "payload.bin", patterned(250))
	artifacts := filepath.Join(dir, "artifacts")
	encodeText(t, input, artifacts)

	t.Run("complete", func(t *testing.T) {
		stdout, err := runApp(t, "analyze", "--carrier", "text", "--strict", "--format", "json", artifacts)
		if err != nil {
			t.Fatalf("analyze: %v", err)
		}
		var report assembly.Report
		if err := json.Unmarshal([]byte(stdout), &report); err != nil {
			t.Fatalf("analyze output %q: %v", stdout, err)
		}
		if report.TotalArtifacts != 3 || report.UniqueFiles != 1 || !report.Complete() {
			t.Errorf("report = %+v", report)
		}
	})

	if err := os.Remove(filepath.Join(artifacts, "payload.bin_chunk_3_of_3.txt")); err != nil {
		t.Fatal(err)
	}

	t.Run("incomplete", func(t *testing.T) {
		stdout, err := runApp(t, "analyze", "--carrier", "text", "--format", "json", artifacts)
		if err != nil {
			t.Fatalf("analyze without --strict should succeed: %v", err)
		}
		var report assembly.Report
		if err := json.Unmarshal([]byte(stdout), &report); err != nil {
			t.Fatal(err)
		}
		if len(report.Files) != 1 {
			t.Fatalf("files = %+v", report.Files)
		}
		f := report.Files[0]
		if f.Complete || len(f.Missing) != 1 || f.Missing[0] != 2 {
			t.Errorf("file report = %+v", f)
		}
	})

	t.Run("strict", func(t *testing.T) {
		_, err := runApp(t, "analyze", "--carrier", "text", "--strict", "--format", "json", artifacts)
		if got := ExitCode(err); got != exitConsistency {
			t.Errorf("exit code = %d, want %d", got, exitConsistency)
		}
	})

	t.Run("table", func(t *testing.T) {
		stdout, err := runApp(t, "analyze", "--carrier", "text", "--format", "table", "--no-color", artifacts)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"artifacts: 2", "payload.bin", "incomplete"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("table output missing %q:\n%s", want, stdout)
			}
		}
	})
}

func TestEstimate(t *testing.T) {
	dir := isolate(t)

	t.Run("fits", func(t *testing.T) {
		input := writeInput(t, dir, "zeros.bin", make([]byte, 2500))
		stdout, err := runApp(t, "estimate", "--carrier", "text", "--compression", "none",
			"--chunk-size", "1000", "--format", "json", input)
		if err != nil {
			t.Fatalf("estimate: %v", err)
		}
		var est pipeline.Estimate
		if err := json.Unmarshal([]byte(stdout), &est); err != nil {
			t.Fatal(err)
		}
		if est.Chunks != 3 || !est.Fits {
			t.Errorf("estimate = %+v", est)
		}
	})

	t.Run("does not fit", func(t *testing.T) {
		data := make([]byte, 2048)
		for i := range data {
			data[i] = byte(i*31 + i/7)
		}
		input := writeInput(t, dir, "big.bin", data)
		stdout, err := runApp(t, "estimate", "--compression", "none", "--chunk-size", "2048",
			"--max-version", "10", "--format", "json", input)
		if got := ExitCode(err); got != exitValidation {
			t.Errorf("exit code = %d (%v), want %d", got, err, exitValidation)
		}
		var est pipeline.Estimate
		if err := json.Unmarshal([]byte(stdout), &est); err != nil {
			t.Fatalf("estimate output %q: %v", stdout, err)
		}
		if est.Fits || est.Problem == "" {
			t.Errorf("estimate = %+v", est)
		}
	})
}

func TestPresets(t *testing.T) {
	isolate(t)
	stdout, err := runApp(t, "presets", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var presets []PresetInfo
	if err := json.Unmarshal([]byte(stdout), &presets); err != nil {
		t.Fatal(err)
	}
	names := map[string]PresetInfo{}
	for _, p := range presets {
		names[p.Name] = p
	}
	for _, want := range []string{"compact", "fast", "robust"} {
		if _, ok := names[want]; !ok {
			t.Errorf("presets missing %q: %+v", want, presets)
		}
	}
	if presets[0].Name != "compact" {
		t.Errorf("presets[0] = %q, want sorted order", presets[0].Name)
	}
}

func TestVersion(t *testing.T) {
	isolate(t)
	stdout, err := runApp(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var v VersionResponse
	if err := json.Unmarshal([]byte(stdout), &v); err != nil {
		t.Fatal(err)
	}
	if v.Version != types.Version || v.RecordVersion != types.RecordVersion || v.Commit != "test" {
		t.Errorf("version = %+v", v)
	}
}

func TestConfigFile_Applied(t *testing.T) {
	dir := isolate(t)
	cfg := "carrier: text\ncompression: none\nchunk_size: 50\n"
	if err := os.WriteFile(filepath.Join(dir, "qrare.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	input := writeInput(t, dir, "small.bin", patterned(120))

	stdout, err := runApp(t, "encode", "--format", "json", "--out", filepath.Join(dir, "a"), input)
	if err != nil {
		t.Fatal(err)
	}
	var res pipeline.EncodeResult
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatal(err)
	}
	if res.Chunks != 3 || res.Carrier != "text" {
		t.Errorf("encode result = %+v, want 3 text chunks from qrare.yaml", res)
	}

	// Flags override the file.
	stdout, err = runApp(t, "encode", "--chunk-size", "200", "--format", "json",
		"--out", filepath.Join(dir, "b"), input)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatal(err)
	}
	if res.Chunks != 1 {
		t.Errorf("chunks = %d, want 1 with --chunk-size 200", res.Chunks)
	}
}

func TestGlobalFlags_DoNotShadowBuiltins(t *testing.T) {
	reserved := map[string]bool{}
	for _, f := range []cli.Flag{cli.VersionFlag, cli.HelpFlag} {
		for _, n := range f.Names() {
			reserved[n] = true
		}
	}
	for _, f := range GlobalFlags() {
		for _, n := range f.Names() {
			if reserved[n] {
				t.Errorf("global flag %q collides with a built-in flag", n)
			}
		}
	}

	isolate(t)
	if _, err := runApp(t, "--verbose", "presets", "--format", "json"); err != nil {
		t.Errorf("--verbose presets: %v", err)
	}
}
