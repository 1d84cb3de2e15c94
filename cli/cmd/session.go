package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/adapter"
	"github.com/pithecene-io/qrare/cli/config"
	"github.com/pithecene-io/qrare/log"
	"github.com/pithecene-io/qrare/metrics"
	"github.com/pithecene-io/qrare/pipeline"
	"github.com/pithecene-io/qrare/storage"
	"github.com/pithecene-io/qrare/types"
)

// session is the per-invocation state shared by the conversion commands.
type session struct {
	operation string
	id        string
	file      *config.Config
	cfg       pipeline.Config
	logger    *log.Logger
	metrics   *metrics.Collector
	notifier  adapter.Adapter
	started   time.Time
}

// newSession loads qrare.yaml, layers flags over it and builds the
// logger. Encode and decode sessions also get the configured notifier.
// Configuration problems are validation errors.
func newSession(c *cli.Context, operation string) (*session, error) {
	file, err := config.LoadOptional(c.String("config"))
	if err != nil {
		return nil, types.NewError(types.KindValidation, "config", "cannot load config", err)
	}
	cfg, err := buildConfig(c, file)
	if err != nil {
		return nil, err
	}

	s := &session{
		operation: operation,
		id:        uuid.NewString(),
		file:      file,
		cfg:       cfg,
		started:   time.Now(),
	}
	s.logger = log.New(log.Context{Operation: operation, ConversionID: s.id}, logLevel(c))

	if operation != "encode" && operation != "decode" {
		return s, nil
	}
	notifyCfg := config.NotifyConfig{}
	if file != nil {
		notifyCfg = file.Notify
	}
	if c.IsSet("notify-type") {
		notifyCfg.Type = c.String("notify-type")
	}
	if c.IsSet("notify-url") {
		notifyCfg.URL = c.String("notify-url")
	}
	s.notifier, err = buildNotifier(notifyCfg)
	if err != nil {
		return nil, types.NewError(types.KindValidation, "config", "invalid notify settings", err)
	}
	return s, nil
}

// withStore attaches the metrics collector once the storage backend is
// known.
func (s *session) withStore(store storage.Store) {
	s.metrics = metrics.NewCollector(s.operation, s.cfg.Carrier, store.Backend(), s.id)
}

func (s *session) options() []pipeline.Option {
	return []pipeline.Option{pipeline.WithLogger(s.logger), pipeline.WithMetrics(s.metrics)}
}

// finish publishes the completion event, if configured, and flushes the
// logger. Notification failures are logged, never returned.
func (s *session) finish(ctx context.Context, location string, file types.LogicalFile, artifacts int, state string, err error) {
	defer s.logger.Sync()
	if s.notifier == nil {
		return
	}
	defer func() { _ = s.notifier.Close() }()

	ev := adapter.NewEvent(s.operation, s.id, file, err, time.Now(), time.Since(s.started))
	ev.Location = location
	ev.Artifacts = artifacts
	ev.State = state
	ev.Metrics = s.metrics.Snapshot()
	if perr := s.notifier.Publish(ctx, ev); perr != nil {
		s.logger.Warn("completion event not delivered", map[string]any{"error": perr.Error()})
	}
}

func logLevel(c *cli.Context) log.Level {
	switch {
	case c.Bool("verbose"):
		return log.LevelDebug
	case c.Bool("quiet"):
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

// buildConfig layers defaults, preset, qrare.yaml and flags, in that
// order. A --preset flag replaces the file's preset.
func buildConfig(c *cli.Context, file *config.Config) (pipeline.Config, error) {
	layered := config.Config{}
	if file != nil {
		layered = *file
	}
	if c.IsSet("preset") {
		layered.Preset = c.String("preset")
	}
	cfg, err := layered.Apply(pipeline.DefaultConfig())
	if err != nil {
		return cfg, err
	}

	if c.IsSet("chunk-size") {
		cfg.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("compression") {
		cfg.Compression = c.String("compression")
	}
	if c.IsSet("effort") {
		cfg.CompressionEffort = c.Int("effort")
	}
	if c.IsSet("digest") {
		cfg.Digest = c.String("digest")
	}
	if c.IsSet("record-format") {
		cfg.RecordFormat = c.String("record-format")
	}
	if c.IsSet("carrier") {
		cfg.Carrier = c.String("carrier")
	}
	if c.IsSet("parallel") {
		cfg.Parallel = c.Int("parallel")
	}
	if c.IsSet("error-correction") {
		cfg.QR.Recovery = c.String("error-correction")
	}
	if c.IsSet("max-version") {
		cfg.QR.MaxVersion = c.Int("max-version")
	}
	if c.IsSet("box-size") {
		cfg.QR.BoxSize = c.Int("box-size")
	}
	if c.Bool("no-quiet-zone") {
		cfg.QR.QuietZone = false
	}
	if c.IsSet("foreground") {
		cfg.QR.Foreground = c.String("foreground")
	}
	if c.IsSet("background") {
		cfg.QR.Background = c.String("background")
	}
	return cfg, cfg.Validate()
}

// openStore opens the artifact store at location using the backend from
// flags or qrare.yaml. Location falls back to storage.path.
func openStore(ctx context.Context, c *cli.Context, file *config.Config, location string, overwrite bool) (storage.Store, error) {
	sc := config.StorageConfig{}
	if file != nil {
		sc = file.Storage
	}
	if c.IsSet("backend") {
		sc.Backend = c.String("backend")
	}
	if c.IsSet("s3-region") {
		sc.Region = c.String("s3-region")
	}
	if c.IsSet("s3-endpoint") {
		sc.Endpoint = c.String("s3-endpoint")
	}
	if c.Bool("s3-path-style") {
		sc.S3PathStyle = true
	}
	if location == "" {
		location = sc.Path
	}
	if location == "" {
		return nil, types.Validationf("storage", "no artifact location: pass a path or set storage.path")
	}
	opt := storage.WithOverwrite(overwrite || sc.Overwrite)

	switch sc.Backend {
	case storage.BackendFS, "":
		return storage.NewFS(location, opt)
	case storage.BackendS3:
		bucket, prefix := storage.ParseS3Path(location)
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       sc.Region,
			Endpoint:     sc.Endpoint,
			UsePathStyle: sc.S3PathStyle,
		}, opt)
	default:
		return nil, types.Validationf("storage", "unknown backend %q (must be fs or s3)", sc.Backend)
	}
}

// scanStore returns the store a reading command scans: --from storage,
// or the artifact paths given as arguments.
func scanStore(ctx context.Context, c *cli.Context, s *session) (storage.Store, error) {
	if from := c.String("from"); from != "" {
		if c.NArg() > 0 {
			return nil, types.Validationf("args", "pass artifact paths or --from, not both")
		}
		return openStore(ctx, c, s.file, from, false)
	}
	if c.NArg() == 0 {
		return nil, types.Validationf("args", "artifact paths or --from required")
	}
	set, err := storage.Discover(c.Args().Slice(), pipeline.ScanExtensions(s.cfg))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.NewError(types.KindValidation, "args", "no artifacts found", err)
		}
		return nil, err
	}
	return set, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// readInput reads the file to encode.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewError(types.KindValidation, "read", fmt.Sprintf("cannot read %s", path), err)
	}
	return data, nil
}
