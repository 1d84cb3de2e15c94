package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pithecene-io/qrare/iox"
)

// PathSet is a read-only Store over explicit local file paths. Artifact
// names are the paths themselves.
type PathSet struct {
	paths []string
}

// NewPathSet returns a store over paths, deduplicated and sorted.
func NewPathSet(paths []string) *PathSet {
	set := slices.Clone(paths)
	slices.Sort(set)
	return &PathSet{paths: slices.Compact(set)}
}

// Discover expands command-line arguments into a PathSet. Each argument
// is a file, a directory (its entries with one of exts are taken) or a
// glob pattern. Arguments that match nothing are an error.
func Discover(args []string, exts []string) (*PathSet, error) {
	var paths []string
	for _, arg := range args {
		found, err := expand(arg, exts)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, &StorageError{Kind: ErrNotFound, Op: "discover", Name: arg,
				Err: fmt.Errorf("no artifacts matched %q", arg)}
		}
		paths = append(paths, found...)
	}
	return NewPathSet(paths), nil
}

func expand(arg string, exts []string) ([]string, error) {
	if strings.ContainsAny(arg, "*?[") {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, &StorageError{Kind: ErrUnclassified, Op: "discover", Name: arg, Err: err}
		}
		var files []string
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				files = append(files, m)
			}
		}
		return files, nil
	}

	info, err := os.Stat(arg)
	if err != nil {
		return nil, wrap("discover", arg, err)
	}
	if !info.IsDir() {
		return []string{arg}, nil
	}

	entries, err := os.ReadDir(arg)
	if err != nil {
		return nil, wrap("discover", arg, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && hasExt(e.Name(), exts) {
			files = append(files, filepath.Join(arg, e.Name()))
		}
	}
	return files, nil
}

func hasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range exts {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// Backend implements Store.
func (*PathSet) Backend() string { return BackendPaths }

// Location implements Store.
func (p *PathSet) Location() string {
	return fmt.Sprintf("%d local paths", len(p.paths))
}

// Put implements Store. A PathSet is read-only.
func (*PathSet) Put(_ context.Context, name string, _ []byte) error {
	return &StorageError{Kind: ErrReadOnly, Op: "put", Name: name, Err: ErrReadOnly}
}

// Get implements Store.
func (*PathSet) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, wrap("get", name, err)
	}
	data, err := iox.ReadAllClose(f, MaxArtifactSize)
	if err != nil {
		return nil, wrap("get", name, err)
	}
	return data, nil
}

// List implements Store.
func (p *PathSet) List(context.Context) ([]string, error) {
	return slices.Clone(p.paths), nil
}
