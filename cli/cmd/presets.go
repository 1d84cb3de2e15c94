package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/qrare/cli/render"
	"github.com/pithecene-io/qrare/pipeline"
)

// PresetInfo describes one conversion preset.
type PresetInfo struct {
	Name            string `json:"name" yaml:"name"`
	ChunkSize       int    `json:"chunk_size" yaml:"chunk_size"`
	Effort          int    `json:"compression_effort" yaml:"compression_effort"`
	ErrorCorrection string `json:"error_correction" yaml:"error_correction"`
	MaxVersion      int    `json:"max_version" yaml:"max_version"`
	Description     string `json:"description" yaml:"description"`
}

// PresetsCommand returns the presets command.
func PresetsCommand() *cli.Command {
	return &cli.Command{
		Name:   "presets",
		Usage:  "List conversion presets",
		Flags:  ReadOnlyFlags(),
		Action: presetsAction,
	}
}

func presetsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for presets command", 1)
	}

	var out []PresetInfo
	for _, p := range pipeline.Presets() {
		cfg, err := pipeline.DefaultConfig().WithPreset(p.Name)
		if err != nil {
			return err
		}
		out = append(out, PresetInfo{
			Name:            p.Name,
			ChunkSize:       cfg.ChunkSize,
			Effort:          cfg.CompressionEffort,
			ErrorCorrection: cfg.QR.Recovery,
			MaxVersion:      cfg.QR.MaxVersion,
			Description:     p.Description,
		})
	}
	return r.Render(out)
}
