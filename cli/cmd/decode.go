package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/cli/render"
	"github.com/pithecene-io/qrare/pipeline"
	"github.com/pithecene-io/qrare/types"
)

// DecodeResponse is the rendered result of the decode command.
type DecodeResponse struct {
	State     pipeline.State    `json:"state" yaml:"state"`
	File      types.LogicalFile `json:"file" yaml:"file"`
	Artifacts int               `json:"artifacts" yaml:"artifacts"`
	Chunks    int               `json:"chunks" yaml:"chunks"`
	Output    string            `json:"output" yaml:"output"`
}

// DecodeCommand returns the decode command.
func DecodeCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Directory for the reconstructed file",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Output file name (default: name recorded in artifacts)",
		},
	}
	flags = append(flags, ScanFlags()...)
	flags = append(flags, NotifyFlags()...)
	flags = append(flags, ReadOnlyFlags()...)

	return &cli.Command{
		Name:      "decode",
		Usage:     "Reconstruct and verify a file from its artifacts",
		ArgsUsage: "<artifact|dir|glob>...",
		Flags:     flags,
		Action:    decodeAction,
	}
}

func decodeAction(c *cli.Context) error {
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for decode command", exitValidation)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitValidation)
	}

	s, err := newSession(c, "decode")
	if err != nil {
		return exitError(err)
	}
	ctx, cancel := signalContext(c)
	defer cancel()

	store, err := scanStore(ctx, c, s)
	if err != nil {
		s.finish(ctx, "", types.LogicalFile{}, 0, pipeline.StateCollecting.String(), err)
		return exitError(err)
	}
	s.withStore(store)

	dec, err := pipeline.NewDecoder(s.cfg, s.options()...)
	if err != nil {
		return exitError(err)
	}
	result, err := dec.Decode(ctx, store)
	if err != nil {
		s.finish(ctx, store.Location(), result.File, result.Artifacts, result.State.String(), err)
		return exitError(err)
	}

	path, err := pipeline.WriteOutput(result, c.String("out"), c.String("name"))
	if err != nil {
		s.finish(ctx, store.Location(), result.File, result.Artifacts, result.State.String(), err)
		return exitError(err)
	}
	s.logger.Info("output written", map[string]any{"path": path})
	s.finish(ctx, store.Location(), result.File, result.Artifacts, result.State.String(), nil)

	return r.Render(DecodeResponse{
		State:     result.State,
		File:      result.File,
		Artifacts: result.Artifacts,
		Chunks:    result.Chunks,
		Output:    path,
	})
}
