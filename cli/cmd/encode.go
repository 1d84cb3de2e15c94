package cmd

import (
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/cli/render"
	"github.com/pithecene-io/qrare/pipeline"
	"github.com/pithecene-io/qrare/types"
)

// EncodeCommand returns the encode command.
func EncodeCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Artifact destination (fs: directory, s3: bucket/prefix)",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Logical file name recorded in artifacts (default: input base name)",
		},
		&cli.BoolFlag{
			Name:  "overwrite",
			Usage: "Replace existing artifacts",
		},
	}
	flags = append(flags, EncodeFlags()...)
	flags = append(flags, StorageFlags()...)
	flags = append(flags, NotifyFlags()...)
	flags = append(flags, ReadOnlyFlags()...)

	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode a file into QR or text artifacts",
		ArgsUsage: "<file>",
		Flags:     flags,
		Action:    encodeAction,
	}
}

func encodeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one input file required", exitValidation)
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for encode command", exitValidation)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitValidation)
	}

	s, err := newSession(c, "encode")
	if err != nil {
		return exitError(err)
	}
	ctx, cancel := signalContext(c)
	defer cancel()

	input := c.Args().First()
	name := c.String("name")
	if name == "" {
		name = filepath.Base(input)
	}
	data, err := readInput(input)
	if err != nil {
		s.finish(ctx, "", types.LogicalFile{Name: name}, 0, "", err)
		return exitError(err)
	}

	store, err := openStore(ctx, c, s.file, c.String("out"), c.Bool("overwrite"))
	if err != nil {
		s.finish(ctx, "", types.LogicalFile{Name: name}, 0, "", err)
		return exitError(err)
	}
	s.withStore(store)

	enc, err := pipeline.NewEncoder(s.cfg, s.options()...)
	if err != nil {
		return exitError(err)
	}
	result, err := enc.Encode(ctx, name, data, store)
	if err != nil {
		s.finish(ctx, store.Location(), types.LogicalFile{Name: name}, 0, "", err)
		return exitError(err)
	}
	s.finish(ctx, result.Location, result.File, result.Chunks, "", nil)

	return r.Render(result)
}
