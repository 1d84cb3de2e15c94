package types //nolint:revive // types is a valid package name

import (
	"regexp"
	"strings"
	"testing"
)

func TestVersion_Format(t *testing.T) {
	semverRegex := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	if !semverRegex.MatchString(Version) {
		t.Errorf("Version %q is not a valid semver", Version)
	}
}

func TestRecordVersion_MajorOne(t *testing.T) {
	if !strings.HasPrefix(RecordVersion, "1.") {
		t.Errorf("RecordVersion %q must stay on major 1", RecordVersion)
	}
}
