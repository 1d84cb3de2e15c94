package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/cli/render"
	"github.com/pithecene-io/qrare/cli/tui"
	"github.com/pithecene-io/qrare/pipeline"
)

// AnalyzeCommand returns the analyze command. Analysis is read-only and
// reports every detected file, complete or not.
func AnalyzeCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Exit non-zero unless every detected file is complete",
		},
	}
	flags = append(flags, ScanFlags()...)
	flags = append(flags, ReadOnlyFlags()...)

	return &cli.Command{
		Name:      "analyze",
		Usage:     "Report chunk coverage of artifacts without reconstructing",
		ArgsUsage: "<artifact|dir|glob>...",
		Flags:     flags,
		Action:    analyzeAction,
	}
}

func analyzeAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitValidation)
	}

	s, err := newSession(c, "analyze")
	if err != nil {
		return exitError(err)
	}
	defer s.logger.Sync()
	ctx, cancel := signalContext(c)
	defer cancel()

	store, err := scanStore(ctx, c, s)
	if err != nil {
		return exitError(err)
	}
	s.withStore(store)

	dec, err := pipeline.NewDecoder(s.cfg, s.options()...)
	if err != nil {
		return exitError(err)
	}
	report, err := dec.Analyze(ctx, store)
	if err != nil {
		return exitError(err)
	}

	if c.Bool("tui") {
		if err := r.RenderTUI(tui.ViewAnalyzeReport, &report); err != nil {
			return err
		}
	} else if err := r.Render(&report); err != nil {
		return err
	}

	if c.Bool("strict") && !report.Complete() {
		return cli.Exit("", exitConsistency)
	}
	return nil
}
