package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion := Version
	origGitCommit := GitCommit
	origBuildDate := BuildDate
	defer func() {
		Version = origVersion
		GitCommit = origGitCommit
		BuildDate = origBuildDate
	}()

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	if Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", Version, "1.2.3")
	}
	full := Full()
	if !strings.Contains(full, "abc123def456") || !strings.Contains(full, "2024-01-15") {
		t.Errorf("Full() = %q, want commit and date included", full)
	}
}

func TestFull_OmitsEmptyMetadata(t *testing.T) {
	origGitCommit := GitCommit
	origBuildDate := BuildDate
	defer func() {
		GitCommit = origGitCommit
		BuildDate = origBuildDate
	}()

	GitCommit = ""
	BuildDate = ""
	if full := Full(); full != Version {
		t.Errorf("Full() = %q, want bare version", full)
	}
}
