package status

import (
	"strings"
	"testing"

	"github.com/utilitywarehouse/git-workspace/repo"
)

func TestDeviationString(t *testing.T) {
	tests := []struct {
		name     string
		tracking *repo.RemoteTrackingStatus
		want     string
	}{
		{"no upstream", nil, ""},
		{"up to date", &repo.RemoteTrackingStatus{Kind: repo.UpToDate}, ""},
		{"ahead", &repo.RemoteTrackingStatus{Kind: repo.Ahead, AheadCount: 3}, "+3"},
		{"behind", &repo.RemoteTrackingStatus{Kind: repo.Behind, BehindCount: 2}, "-2"},
		{"diverged", &repo.RemoteTrackingStatus{Kind: repo.Diverged, AheadCount: 1, BehindCount: 4}, "+1/-4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deviationString(tt.tracking)
			// lipgloss renders plain text when no terminal is attached, but
			// strip any escapes defensively so the assertion is stable.
			got = stripEscapes(got)
			if got != tt.want {
				t.Errorf("deviationString = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSingleDerivesNameFromLeafDirectory(t *testing.T) {
	head := repo.BranchName("main")
	out := stripEscapes(Single("/repos/team/app", repo.RepoStatus{
		Head:    &head,
		Changes: &repo.Changes{},
	}))

	if !strings.HasPrefix(out, "app\n") {
		t.Errorf("Single output does not lead with the leaf directory name:\n%s", out)
	}
	if !strings.Contains(out, "branch: main") {
		t.Errorf("Single output missing branch line:\n%s", out)
	}
	if !strings.Contains(out, "clean") {
		t.Errorf("Single output missing clean marker:\n%s", out)
	}
}

func TestSingleBareRoot(t *testing.T) {
	out := stripEscapes(Single("/repos/team/app", repo.RepoStatus{}))
	if !strings.Contains(out, "bare worktree-layout root") {
		t.Errorf("Single output missing bare marker:\n%s", out)
	}
}

func TestWorktreesTable(t *testing.T) {
	rows := []WorktreeRow{
		{Name: "main", Branch: "main"},
		{Name: "feature", Branch: "feature", Changes: repo.Changes{New: 1, Modified: 2},
			Tracking: &repo.RemoteTrackingStatus{Kind: repo.Ahead, AheadCount: 5}},
	}

	out := stripEscapes(Worktrees(rows))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("table has %d lines, want header plus 2 rows:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "NAME") || !strings.Contains(lines[0], "DEVIATION") {
		t.Errorf("header line malformed: %q", lines[0])
	}
	if !strings.Contains(lines[1], "clean") {
		t.Errorf("clean worktree row missing clean marker: %q", lines[1])
	}
	if !strings.Contains(lines[2], "+1 ~2 -0") || !strings.Contains(lines[2], "+5") {
		t.Errorf("dirty worktree row missing counts or deviation: %q", lines[2])
	}
}

// stripEscapes removes ANSI SGR sequences so assertions hold whether or not
// lipgloss detects a colour-capable terminal.
func stripEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
