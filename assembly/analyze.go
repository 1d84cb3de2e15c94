package assembly

import (
	"slices"
	"strconv"

	"github.com/pithecene-io/qrare/chunk"
	"github.com/pithecene-io/qrare/types"
)

// Report summarizes a set of scanned units.
type Report struct {
	TotalArtifacts int             `json:"total_artifacts" yaml:"total_artifacts"`
	Readable       int             `json:"readable" yaml:"readable"`
	Failed         int             `json:"failed" yaml:"failed"`
	UniqueFiles    int             `json:"unique_files" yaml:"unique_files"`
	Files          []FileReport    `json:"files" yaml:"files"`
	Errors         []ArtifactError `json:"errors" yaml:"errors"`
}

// Complete reports whether every file in the report is complete.
func (r *Report) Complete() bool {
	if len(r.Files) == 0 {
		return false
	}
	for i := range r.Files {
		if !r.Files[i].Complete {
			return false
		}
	}
	return true
}

// FileReport is the per-file view of a Report. Expected values come
// from the first readable chunk seen for the file name.
type FileReport struct {
	FileName    string     `json:"file_name" yaml:"file_name"`
	ContentHash string     `json:"content_hash" yaml:"content_hash"`
	Total       int        `json:"total_chunks" yaml:"total_chunks"`
	Transform   string     `json:"compression" yaml:"compression"`
	Digest      string     `json:"digest" yaml:"digest"`
	Found       []int      `json:"found" yaml:"found"`
	Missing     []int      `json:"missing" yaml:"missing"`
	Duplicates  []int      `json:"duplicates" yaml:"duplicates"`
	Conflicts   []Conflict `json:"conflicts" yaml:"conflicts"`
	Artifacts   []string   `json:"artifacts" yaml:"artifacts"`
	Complete    bool       `json:"is_complete" yaml:"is_complete"`
}

// Conflict is a chunk whose metadata disagrees with its file's expected
// values.
type Conflict struct {
	Artifact string `json:"artifact" yaml:"artifact"`
	Index    int    `json:"chunk_index" yaml:"chunk_index"`
	Field    string `json:"field" yaml:"field"`
	Expected string `json:"expected" yaml:"expected"`
	Actual   string `json:"actual" yaml:"actual"`
}

// ArtifactError describes an artifact that produced no chunk.
type ArtifactError struct {
	Artifact string `json:"artifact" yaml:"artifact"`
	Kind     string `json:"kind" yaml:"kind"`
	Message  string `json:"message" yaml:"message"`
	// Hint is recovered from the artifact name, if it conforms.
	Hint *chunk.ArtifactInfo `json:"hint,omitempty" yaml:"hint,omitempty"`
}

type fileState struct {
	first  *types.Chunk
	report FileReport
	counts map[int]int
}

// Analyze reports per-file completeness over units. It never fails:
// unreadable units are counted and listed, chunks of several files are
// grouped by file name, and metadata disagreements are reported as
// conflicts.
func Analyze(units []types.ScannedUnit) Report {
	report := Report{TotalArtifacts: len(units)}
	files := make(map[string]*fileState)

	for _, u := range units {
		if u.Chunk == nil {
			report.Failed++
			report.Errors = append(report.Errors, artifactError(u))
			continue
		}
		report.Readable++

		c := u.Chunk
		st, ok := files[c.FileName]
		if !ok {
			st = &fileState{
				first: c,
				report: FileReport{
					FileName:    c.FileName,
					ContentHash: c.ContentHash,
					Total:       c.Total,
					Transform:   c.Transform,
					Digest:      c.Digest,
				},
				counts: make(map[int]int),
			}
			files[c.FileName] = st
		}
		st.report.Artifacts = append(st.report.Artifacts, u.Artifact)

		if conflict, bad := conflictWith(st.first, c, u.Artifact); bad {
			st.report.Conflicts = append(st.report.Conflicts, conflict)
			continue
		}
		st.counts[c.Index]++
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		st := files[name]
		fr := st.report
		for index, n := range st.counts {
			fr.Found = append(fr.Found, index)
			if n > 1 {
				fr.Duplicates = append(fr.Duplicates, index)
			}
		}
		slices.Sort(fr.Found)
		slices.Sort(fr.Duplicates)
		for i := 0; i < fr.Total; i++ {
			if st.counts[i] == 0 {
				fr.Missing = append(fr.Missing, i)
			}
		}
		fr.Complete = len(fr.Missing) == 0 && len(fr.Conflicts) == 0
		report.Files = append(report.Files, fr)
	}
	report.UniqueFiles = len(report.Files)
	return report
}

func conflictWith(first, c *types.Chunk, artifact string) (Conflict, bool) {
	fields := []struct {
		name             string
		expected, actual string
	}{
		{"total_chunks", strconv.Itoa(first.Total), strconv.Itoa(c.Total)},
		{"file_hash", first.ContentHash, c.ContentHash},
		{"compression", first.Transform, c.Transform},
		{"digest", first.Digest, c.Digest},
	}
	for _, f := range fields {
		if f.expected != f.actual {
			return Conflict{
				Artifact: artifact,
				Index:    c.Index,
				Field:    f.name,
				Expected: f.expected,
				Actual:   f.actual,
			}, true
		}
	}
	return Conflict{}, false
}

func artifactError(u types.ScannedUnit) ArtifactError {
	ae := ArtifactError{
		Artifact: u.Artifact,
		Kind:     types.KindOf(u.Err).String(),
	}
	if u.Err != nil {
		ae.Message = u.Err.Error()
	}
	if info, ok := chunk.ParseArtifactName(u.Artifact); ok {
		ae.Hint = &info
	}
	return ae
}
