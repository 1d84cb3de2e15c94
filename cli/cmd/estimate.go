package cmd

import (
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/cli/render"
	"github.com/pithecene-io/qrare/pipeline"
)

// EstimateCommand returns the estimate command. It prepares the file
// exactly as encode would and reports chunk count and carrier fit
// without writing artifacts.
func EstimateCommand() *cli.Command {
	flags := append(EncodeFlags(), ReadOnlyFlags()...)
	return &cli.Command{
		Name:      "estimate",
		Usage:     "Report chunk count and capacity headroom for a file",
		ArgsUsage: "<file>",
		Flags:     flags,
		Action:    estimateAction,
	}
}

func estimateAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one input file required", exitValidation)
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for estimate command", exitValidation)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitValidation)
	}

	s, err := newSession(c, "estimate")
	if err != nil {
		return exitError(err)
	}
	defer s.logger.Sync()

	input := c.Args().First()
	data, err := readInput(input)
	if err != nil {
		return exitError(err)
	}
	enc, err := pipeline.NewEncoder(s.cfg, pipeline.WithLogger(s.logger))
	if err != nil {
		return exitError(err)
	}
	est, err := enc.Estimate(filepath.Base(input), data)
	if err != nil {
		return exitError(err)
	}
	if err := r.Render(est); err != nil {
		return err
	}
	if !est.Fits {
		return cli.Exit("", exitValidation)
	}
	return nil
}
