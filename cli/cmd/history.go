package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/adapter/redis"
	"github.com/pithecene-io/qrare/cli/config"
	"github.com/pithecene-io/qrare/cli/render"
	"github.com/pithecene-io/qrare/types"
)

// HistoryEntry is one recorded conversion event.
type HistoryEntry struct {
	ConversionID string `json:"conversion_id" yaml:"conversion_id"`
	Operation    string `json:"operation" yaml:"operation"`
	Outcome      string `json:"outcome" yaml:"outcome"`
	File         string `json:"file" yaml:"file"`
	Artifacts    int    `json:"artifacts" yaml:"artifacts"`
	ErrorKind    string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Timestamp    string `json:"timestamp" yaml:"timestamp"`
}

// HistoryCommand returns the history command. It lists recent
// conversion events from the redis history list.
func HistoryCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:  "history-key",
			Usage: "Redis list holding conversion events (default: notify.history_key)",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Most recent events to list (default: the history limit)",
		},
	}, NotifyFlags()...)
	return &cli.Command{
		Name:   "history",
		Usage:  "List recent conversion events recorded in redis",
		Flags:  append(flags, ReadOnlyFlags()...),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	if c.NArg() != 0 {
		return cli.Exit("history takes no arguments", exitValidation)
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for history command", exitValidation)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitValidation)
	}

	file, err := config.LoadOptional(c.String("config"))
	if err != nil {
		return exitError(types.NewError(types.KindValidation, "config", "cannot load config", err))
	}
	nc := config.NotifyConfig{}
	if file != nil {
		nc = file.Notify
	}
	if c.IsSet("notify-type") {
		nc.Type = c.String("notify-type")
	}
	if c.IsSet("notify-url") {
		nc.URL = c.String("notify-url")
	}
	if c.IsSet("history-key") {
		nc.HistoryKey = c.String("history-key")
	}
	if nc.Type != "redis" {
		return exitError(types.Validationf("history", "history requires notify type redis, got %q", nc.Type))
	}
	if nc.HistoryKey == "" {
		return exitError(types.Validationf("history", "no history key: pass --history-key or set notify.history_key"))
	}

	a, err := redis.New(redis.Config{
		URL:          nc.URL,
		Channel:      nc.Channel,
		HistoryKey:   nc.HistoryKey,
		HistoryLimit: nc.HistoryLimit,
		Timeout:      nc.Timeout.Duration,
	})
	if err != nil {
		return exitError(types.NewError(types.KindValidation, "history", "invalid notify settings", err))
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := signalContext(c)
	defer cancel()
	events, err := a.History(ctx, c.Int("limit"))
	if err != nil {
		return exitError(err)
	}

	out := make([]HistoryEntry, 0, len(events))
	for _, ev := range events {
		out = append(out, HistoryEntry{
			ConversionID: ev.ConversionID,
			Operation:    ev.Operation,
			Outcome:      ev.Outcome,
			File:         ev.File.Name,
			Artifacts:    ev.Artifacts,
			ErrorKind:    ev.ErrorKind,
			Timestamp:    ev.Timestamp,
		})
	}
	return r.Render(out)
}
