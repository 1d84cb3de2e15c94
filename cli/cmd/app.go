package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/types"
)

// NewApp returns the qrare application with every command registered.
func NewApp(commit string) *cli.App {
	return &cli.App{
		Name:    "qrare",
		Usage:   "Convert files to QR code or text artifacts and back",
		Version: fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		Flags:   GlobalFlags(),
		Commands: []*cli.Command{
			EncodeCommand(),
			DecodeCommand(),
			AnalyzeCommand(),
			EstimateCommand(),
			PresetsCommand(),
			HistoryCommand(),
			VersionCommand(commit),
		},
	}
}
