package chunk

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// UnnamedFile replaces names that sanitize to nothing.
const UnnamedFile = "unnamed_file"

// Sanitize makes name safe as a file system path component. Reserved
// characters and control characters become underscores, and leading or
// trailing dots and spaces are trimmed.
func Sanitize(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, name)
	sanitized = strings.Trim(sanitized, ". ")
	if sanitized == "" {
		return UnnamedFile
	}
	return sanitized
}

// ArtifactName returns the artifact name for the chunk at zero-based
// index of total. The ordinal is 1-based and zero-padded to the width of
// total so names sort lexically.
func ArtifactName(fileName string, index, total int, ext string) string {
	width := len(strconv.Itoa(total))
	return fmt.Sprintf("%s_chunk_%0*d_of_%d%s", Sanitize(fileName), width, index+1, total, ext)
}

// ArtifactInfo is what can be recovered from a conforming artifact name.
type ArtifactInfo struct {
	// Name is the sanitized file name prefix.
	Name string `json:"name" yaml:"name"`
	// Index is the zero-based chunk index.
	Index int `json:"chunk_index" yaml:"chunk_index"`
	// Total is the chunk count.
	Total int `json:"total_chunks" yaml:"total_chunks"`
}

var artifactPattern = regexp.MustCompile(`^(.*)_chunk_(\d+)_of_(\d+)$`)

// ParseArtifactName recovers chunk information from an artifact name or
// path produced by ArtifactName. It reports false for names that do not
// conform.
func ParseArtifactName(name string) (ArtifactInfo, bool) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	m := artifactPattern.FindStringSubmatch(base)
	if m == nil {
		return ArtifactInfo{}, false
	}
	ordinal, err := strconv.Atoi(m[2])
	if err != nil {
		return ArtifactInfo{}, false
	}
	total, err := strconv.Atoi(m[3])
	if err != nil {
		return ArtifactInfo{}, false
	}
	if ordinal < 1 || ordinal > total {
		return ArtifactInfo{}, false
	}
	return ArtifactInfo{Name: m[1], Index: ordinal - 1, Total: total}, true
}
