package render

import (
	"fmt"
	"text/tabwriter"

	"github.com/pithecene-io/qrare/assembly"
	"github.com/pithecene-io/qrare/chunk"
	"github.com/pithecene-io/qrare/cli/tui"
)

// renderReportTable writes a summary line, one row per file with chunk
// indices as compact ranges, then the unreadable artifacts.
func (r *Renderer) renderReportTable(rep *assembly.Report) error {
	fmt.Fprintf(r.out, "artifacts: %d  readable: %d  failed: %d  files: %d\n\n",
		rep.TotalArtifacts, rep.Readable, rep.Failed, rep.UniqueFiles)

	if len(rep.Files) == 0 {
		fmt.Fprintln(r.out, "(no readable transport units)")
	} else {
		w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tCHUNKS\tFOUND\tMISSING\tDUPLICATES\tCONFLICTS\tSTATUS")
		for _, f := range rep.Files {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%d\t%s\n",
				f.FileName, f.Total,
				chunk.FormatRanges(f.Found),
				chunk.FormatRanges(f.Missing),
				chunk.FormatRanges(f.Duplicates),
				len(f.Conflicts),
				r.status(tui.FileStatus(f)))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	for _, f := range rep.Files {
		for _, c := range f.Conflicts {
			fmt.Fprintf(r.out, "conflict: %s chunk %d: %s is %q, expected %q\n",
				c.Artifact, c.Index, c.Field, c.Actual, c.Expected)
		}
	}

	if len(rep.Errors) > 0 {
		fmt.Fprintln(r.out)
		w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ARTIFACT\tKIND\tMESSAGE")
		for _, e := range rep.Errors {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Artifact, e.Kind, e.Message)
		}
		return w.Flush()
	}
	return nil
}

func (r *Renderer) status(s string) string {
	if r.noColor {
		return s
	}
	return tui.StateStyle(s).Render(s)
}
