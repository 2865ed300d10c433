// Package status renders a repo.RepoStatus as a human-readable table.
// The table format itself is not contractual; only the aggregation
// rules it draws from are.
package status

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/utilitywarehouse/git-workspace/internal/vcs"
	"github.com/utilitywarehouse/git-workspace/repo"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7eb8da"))
	aheadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7ec699"))
	behindStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a054"))
	dirtyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e06c75"))
	cleanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
)

// deviationString renders upstream deviation as "+a", "-b" or "+a/-b", or
// "" when there is no upstream or the branch is up to date.
func deviationString(t *repo.RemoteTrackingStatus) string {
	if t == nil {
		return ""
	}
	switch {
	case t.AheadCount > 0 && t.BehindCount > 0:
		return aheadStyle.Render("+"+strconv.Itoa(t.AheadCount)) + "/" + behindStyle.Render("-"+strconv.Itoa(t.BehindCount))
	case t.AheadCount > 0:
		return aheadStyle.Render("+" + strconv.Itoa(t.AheadCount))
	case t.BehindCount > 0:
		return behindStyle.Render("-" + strconv.Itoa(t.BehindCount))
	default:
		return ""
	}
}

// Single renders a single-repo status, deriving the repo's displayed name
// from the leaf directory of path.
func Single(path string, st repo.RepoStatus) string {
	name := filepath.Base(path)

	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render(name))

	if st.Head != nil {
		fmt.Fprintf(&b, "  branch: %s\n", *st.Head)
	} else {
		fmt.Fprintln(&b, "  (bare worktree-layout root)")
	}

	if st.Changes != nil {
		if st.Changes.Empty() {
			fmt.Fprintln(&b, "  "+cleanStyle.Render("clean"))
		} else {
			fmt.Fprintf(&b, "  %s\n", dirtyStyle.Render(fmt.Sprintf(
				"new=%d modified=%d deleted=%d", st.Changes.New, st.Changes.Modified, st.Changes.Deleted)))
		}
	}

	fmt.Fprintf(&b, "  remotes: %d, worktrees: %d\n", len(st.Remotes), st.Worktrees)

	for _, s := range st.Submodules {
		fmt.Fprintf(&b, "  submodule %s: %s\n", s.Name, submoduleStateString(s.State))
	}

	return b.String()
}

// WorktreeRow is one rendered row of a worktree-status listing: per-
// worktree counts, local branch name, and upstream deviation string.
type WorktreeRow struct {
	Name     repo.WorktreeName
	Branch   repo.BranchName
	Changes  repo.Changes
	Tracking *repo.RemoteTrackingStatus
}

// RowsFromInfo builds WorktreeRow entries from enumerated worktrees and
// their per-worktree status.
func RowsFromInfo(infos []vcs.WorktreeInfo, statuses map[repo.WorktreeName]repo.RepoStatus) []WorktreeRow {
	rows := make([]WorktreeRow, 0, len(infos))
	for _, info := range infos {
		st := statuses[info.Name]
		var changes repo.Changes
		if st.Changes != nil {
			changes = *st.Changes
		}
		var tracking *repo.RemoteTrackingStatus
		for _, b := range st.Branches {
			if b.Local == info.Branch {
				tracking = b.Tracking
				break
			}
		}
		rows = append(rows, WorktreeRow{Name: info.Name, Branch: info.Branch, Changes: changes, Tracking: tracking})
	}
	return rows
}

// Worktrees renders a worktree-status table: one row per worktree, with
// counts, local branch name, and the upstream deviation string.
func Worktrees(rows []WorktreeRow) string {
	widths := [3]int{len("NAME"), len("BRANCH"), len("CHANGES")}
	for _, r := range rows {
		widths[0] = max(widths[0], lipgloss.Width(string(r.Name)))
		widths[1] = max(widths[1], lipgloss.Width(string(r.Branch)))
	}

	var b strings.Builder
	fmt.Fprintln(&b, headerStyle.Render(pad("NAME", widths[0])+"  "+pad("BRANCH", widths[1])+"  CHANGES  DEVIATION"))
	for _, r := range rows {
		changes := "clean"
		if !r.Changes.Empty() {
			changes = fmt.Sprintf("+%d ~%d -%d", r.Changes.New, r.Changes.Modified, r.Changes.Deleted)
		}
		dev := deviationString(r.Tracking)
		fmt.Fprintf(&b, "%s  %s  %-7s  %s\n", pad(string(r.Name), widths[0]), pad(string(r.Branch), widths[1]), changes, dev)
	}
	return b.String()
}

func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func submoduleStateString(s repo.SubmoduleState) string {
	switch s {
	case repo.SubmoduleUninitialized:
		return "uninitialized"
	case repo.SubmoduleChanged:
		return "changed"
	case repo.SubmoduleOutOfDate:
		return "out of date"
	default:
		return "clean"
	}
}
