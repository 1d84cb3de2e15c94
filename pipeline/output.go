package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pithecene-io/qrare/chunk"
	"github.com/pithecene-io/qrare/types"
)

// maxOutputSuffix bounds the _N suffixes tried by SafeOutputPath.
const maxOutputSuffix = 10000

// SafeOutputPath returns dir/name, or dir/<stem>_<n><ext> for the
// smallest n that does not exist yet. name is sanitized first so it can
// never escape dir.
func SafeOutputPath(dir, name string) (string, error) {
	name = chunk.Sanitize(filepath.Base(name))
	candidate := filepath.Join(dir, name)
	if !exists(candidate) {
		return candidate, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; n <= maxOutputSuffix; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free output name for %s in %s after %d attempts", name, dir, maxOutputSuffix)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// WriteOutput writes verified bytes into dir and returns the path
// written. The file is staged in a temporary file in dir and renamed
// into place; nothing is left behind on failure. If name is empty the
// recorded file name is used. Results that did not verify are refused.
func WriteOutput(result *DecodeResult, dir, name string) (string, error) {
	if result == nil || result.State != StateVerifiedOK {
		return "", types.Validationf("write", "refusing to write unverified output")
	}
	if name == "" {
		name = result.File.Name
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	target, err := SafeOutputPath(dir, name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".qrare-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(result.Data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("rename into place: %w", err)
	}
	committed = true
	return target, nil
}
