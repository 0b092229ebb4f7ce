package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	_ = GitCommit
	_ = BuildDate
}

func TestColoredPlainWhenDisabled(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	if got := Colored("1.2.3-rc.1"); got != "1.2.3-rc.1" {
		t.Fatalf("want %q, got %q", "1.2.3-rc.1", got)
	}
}

func TestColoredKeepsDigitsAndSuffix(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	got := Colored("0.1.0-dev")
	for _, part := range []string{"0", "1", "-dev", "\x1b["} {
		if !strings.Contains(got, part) {
			t.Fatalf("colored version %q lacks %q", got, part)
		}
	}
}

func TestColoredLeavesNonSemver(t *testing.T) {
	for _, v := range []string{"dev", "1.2", ".1.2", "1.2.x"} {
		if got := Colored(v); got != v {
			t.Errorf("Colored(%q) = %q, want unchanged", v, got)
		}
	}
}

func TestToolIncludesCommit(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version = "1.2.3"
	GitCommit = ""
	if got := Tool(); got != Schema+"+1.2.3" {
		t.Fatalf("want %q, got %q", Schema+"+1.2.3", got)
	}
	GitCommit = "abc123"
	if got := Tool(); got != Schema+"+1.2.3+abc123" {
		t.Fatalf("want %q, got %q", Schema+"+1.2.3+abc123", got)
	}
}
