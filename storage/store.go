// Package storage reads and writes conversion artifacts. Stores are
// backed by lode (filesystem, S3 or memory) or, for decoding files named
// on the command line, by an explicit set of local paths.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justapithecus/lode/lode"
	lodes3 "github.com/justapithecus/lode/lode/s3"

	"github.com/pithecene-io/qrare/iox"
)

// MaxArtifactSize bounds the bytes read for a single artifact.
const MaxArtifactSize = 256 << 20

// Backend names.
const (
	BackendFS     = "fs"
	BackendS3     = "s3"
	BackendMemory = "memory"
	BackendPaths  = "paths"
)

// Store holds artifacts by name.
type Store interface {
	// Put stores data under name.
	Put(ctx context.Context, name string, data []byte) error
	// Get returns the artifact stored under name.
	Get(ctx context.Context, name string) ([]byte, error)
	// List returns the stored artifact names in sorted order.
	List(ctx context.Context) ([]string, error)
	// Backend returns the backend name.
	Backend() string
	// Location describes where artifacts live (directory, bucket/prefix).
	Location() string
}

// LodeStore is a Store over a lode.Store. Artifact names are flat keys
// at the store root.
type LodeStore struct {
	store     lode.Store
	backend   string
	location  string
	overwrite bool
}

// Option configures a LodeStore.
type Option func(*LodeStore)

// WithOverwrite replaces existing artifacts on Put instead of failing
// with ErrExists.
func WithOverwrite(overwrite bool) Option {
	return func(s *LodeStore) { s.overwrite = overwrite }
}

// New wraps an existing lode store.
func New(store lode.Store, backend, location string, opts ...Option) *LodeStore {
	s := &LodeStore{store: store, backend: backend, location: location}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFS returns a filesystem store rooted at dir, creating it if needed.
func NewFS(dir string, opts ...Option) (*LodeStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrap("init", dir, err)
	}
	store, err := lode.NewFSFactory(dir)()
	if err != nil {
		return nil, wrap("init", dir, err)
	}
	return New(store, BackendFS, dir, opts...), nil
}

// NewMemory returns an in-memory store.
func NewMemory(opts ...Option) *LodeStore {
	return New(lode.NewMemory(), BackendMemory, "memory", opts...)
}

// S3Config holds configuration for the S3 backend.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom endpoint for S3-compatible providers
	// (MinIO, R2). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// ParseS3Path splits "bucket/prefix" or "bucket".
func ParseS3Path(p string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(p, "/")
	return bucket, strings.Trim(prefix, "/")
}

// NewS3 returns an S3 store using the AWS default credential chain.
func NewS3(ctx context.Context, cfg S3Config, opts ...Option) (*LodeStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, wrap("init", cfg.Bucket, fmt.Errorf("load AWS config: %w", err))
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = &endpoint })
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	store, err := lodes3.New(s3.NewFromConfig(awsConfig, s3Opts...), lodes3.Config{
		Bucket: cfg.Bucket,
		Prefix: cfg.Prefix,
	})
	if err != nil {
		return nil, wrap("init", cfg.Bucket, err)
	}
	location := cfg.Bucket
	if cfg.Prefix != "" {
		location += "/" + cfg.Prefix
	}
	return New(store, BackendS3, location, opts...), nil
}

// Backend implements Store.
func (s *LodeStore) Backend() string { return s.backend }

// Location implements Store.
func (s *LodeStore) Location() string { return s.location }

// Put implements Store.
func (s *LodeStore) Put(ctx context.Context, name string, data []byte) error {
	if err := validName(name); err != nil {
		return &StorageError{Kind: ErrUnclassified, Op: "put", Name: name, Err: err}
	}
	exists, err := s.store.Exists(ctx, name)
	if err != nil {
		return wrap("put", name, err)
	}
	if exists {
		if !s.overwrite {
			return &StorageError{Kind: ErrExists, Op: "put", Name: name, Err: fmt.Errorf("%s already stored in %s", name, s.location)}
		}
		if err := s.store.Delete(ctx, name); err != nil {
			return wrap("put", name, err)
		}
	}
	return wrap("put", name, s.store.Put(ctx, name, bytes.NewReader(data)))
}

// Get implements Store.
func (s *LodeStore) Get(ctx context.Context, name string) ([]byte, error) {
	rc, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, wrap("get", name, err)
	}
	data, err := iox.ReadAllClose(rc, MaxArtifactSize)
	if err != nil {
		return nil, wrap("get", name, err)
	}
	return data, nil
}

// List implements Store. Only top-level artifact names are returned.
func (s *LodeStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.store.List(ctx, "")
	if err != nil {
		return nil, wrap("list", s.location, err)
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimPrefix(key, "/")
		if key == "" || strings.Contains(key, "/") {
			continue
		}
		names = append(names, key)
	}
	slices.Sort(names)
	return names, nil
}

func validName(name string) error {
	if name == "" || name != path.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid artifact name %q", name)
	}
	return nil
}
