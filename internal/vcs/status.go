package vcs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/utilitywarehouse/git-workspace/repo"
)

// Status computes the full RepoStatus for the checkout at dir. dir is
// the absolute path of the worktree to inspect: the
// handle's own root for a plain (non-worktree-layout) repository, or one
// of its linked worktrees' paths for a worktree-layout repository. Passing
// "" for a worktree-layout handle computes status for the bare admin root
// itself, where Head/Changes/Submodules are always nil.
func (h *Handle) Status(ctx context.Context, dir string) (repo.RepoStatus, error) {
	var st repo.RepoStatus

	cwd := dir
	if cwd == "" {
		cwd = h.gitDir
	}
	st.Operation = operationAt(cwd)

	remotes, err := h.Remotes(ctx)
	if err != nil {
		return st, err
	}
	st.Remotes = remotes

	branches, err := h.branchTrackingList(ctx)
	if err != nil {
		return st, err
	}
	st.Branches = branches

	worktrees, err := h.GetWorktrees(ctx)
	if err != nil {
		return st, err
	}
	st.Worktrees = len(worktrees)

	bareRoot := h.worktreeSetup == repo.Worktree && dir == ""
	if bareRoot {
		st.Empty = len(branches) == 0
		return st, nil
	}

	checkout, wt, err := openCheckout(cwd)
	if err != nil {
		return st, err
	}

	if head, err := checkout.Head(); err == nil && head.Name().IsBranch() {
		name := head.Name().Short()
		if err := utf8Name("branch", name); err != nil {
			return st, err
		}
		b := repo.BranchName(name)
		st.Head = &b
	}

	wtStatus, err := wt.Status()
	if err != nil {
		return st, err
	}
	changes := classifyChanges(wtStatus)
	st.Changes = &changes

	subs, err := submodulesFrom(wt)
	if err != nil {
		return st, err
	}
	st.Submodules = subs

	st.Empty = st.Head == nil && changes.Empty() && len(subs) == 0 && len(worktrees) == 0

	return st, nil
}

// ChangesEmptyAssertion enforces the invariant that when anyChanges is
// true at least one counter is non-zero. Used by callers that compute
// Changes themselves for validation in tests.
func ChangesEmptyAssertion(c repo.Changes, anyChanges bool) bool {
	if !anyChanges {
		return c.Empty()
	}
	return !c.Empty()
}

// operationAt reports the checkout's mid-operation state by inspecting
// its git directory, following the .git-file indirection linked worktrees
// use.
func operationAt(dir string) repo.Operation {
	gd := gitDirPath(dir)
	if gd == "" {
		return repo.OperationNone
	}
	checks := []struct {
		file string
		op   repo.Operation
	}{
		{"rebase-merge", repo.OperationRebase},
		{"rebase-apply", repo.OperationRebase},
		{"MERGE_HEAD", repo.OperationMerge},
		{"CHERRY_PICK_HEAD", repo.OperationCherryPick},
		{"REVERT_HEAD", repo.OperationRevert},
		{"BISECT_LOG", repo.OperationBisect},
	}
	for _, c := range checks {
		if _, err := os.Stat(filepath.Join(gd, c.file)); err == nil {
			return c.op
		}
	}
	return repo.OperationNone
}

// gitDirPath resolves the git directory backing the checkout at dir: .git
// itself when it is a directory, the "gitdir:" target when .git is a file
// (a linked worktree), or dir when it already is a git directory (the
// bare admin root).
func gitDirPath(dir string) string {
	dotGit := filepath.Join(dir, ".git")
	if fi, err := os.Stat(dotGit); err == nil {
		if fi.IsDir() {
			return dotGit
		}
		data, err := os.ReadFile(dotGit)
		if err != nil {
			return ""
		}
		target := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(data)), "gitdir:"))
		if target == "" {
			return ""
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		return target
	}
	if _, err := os.Stat(filepath.Join(dir, "HEAD")); err == nil {
		return dir
	}
	return ""
}

// classifyChanges folds a go-git worktree status into the new/modified/
// deleted counters, each entry classified into exactly one, in that
// priority order; renames, copies, type changes and unmerged entries all
// count as modified.
func classifyChanges(s git.Status) repo.Changes {
	var c repo.Changes
	for _, fs := range s {
		switch {
		case fs.Staging == git.Added || fs.Worktree == git.Untracked:
			c.New++
		case isModifiedCode(fs.Staging) || isModifiedCode(fs.Worktree):
			c.Modified++
		case fs.Staging == git.Deleted || fs.Worktree == git.Deleted:
			c.Deleted++
		}
	}
	return c
}

func isModifiedCode(code git.StatusCode) bool {
	switch code {
	case git.Modified, git.Renamed, git.Copied, git.UpdatedButUnmerged:
		return true
	}
	return false
}

// HasIgnoredFiles reports whether the checkout at dir contains any entry
// matched by its gitignore patterns; ConvertToWorktree refuses conversion
// when it returns true.
func (h *Handle) HasIgnoredFiles(ctx context.Context, dir string) (bool, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(dir), nil)
	if err != nil {
		return false, err
	}
	if len(patterns) == 0 {
		return false, nil
	}
	matcher := gitignore.NewMatcher(patterns)

	found := false
	var walk func(rel []string) error
	walk = func(rel []string) error {
		entries, err := os.ReadDir(filepath.Join(append([]string{dir}, rel...)...))
		if err != nil {
			return err
		}
		for _, e := range entries {
			if len(rel) == 0 && (e.Name() == ".git" || e.Name() == AdminDirName) {
				continue
			}
			parts := append(append([]string{}, rel...), e.Name())
			if matcher.Match(parts, e.IsDir()) {
				found = true
				return nil
			}
			if e.IsDir() {
				if err := walk(parts); err != nil {
					return err
				}
				if found {
					return nil
				}
			}
		}
		return nil
	}
	if err := walk(nil); err != nil {
		return false, err
	}
	return found, nil
}

// submodulesAt classifies each submodule of the checkout at cwd.
func (h *Handle) submodulesAt(ctx context.Context, cwd string) ([]repo.SubmoduleStatus, error) {
	_, wt, err := openCheckout(cwd)
	if err != nil {
		return nil, err
	}
	return submodulesFrom(wt)
}

// submodulesFrom classifies each submodule of wt. The commit recorded in
// the superproject's index is compared with the submodule's own HEAD: a
// mismatch is "out of date", not "changed", since the submodule itself may
// be perfectly clean at a different commit. A dirty submodule working tree
// takes priority over every other state and has to be detected by opening
// the submodule's own repository; the index comparison cannot see it.
func submodulesFrom(wt *git.Worktree) ([]repo.SubmoduleStatus, error) {
	subs, err := wt.Submodules()
	if err != nil || len(subs) == 0 {
		return nil, nil
	}

	var out []repo.SubmoduleStatus
	for _, sub := range subs {
		name := sub.Config().Name
		if err := utf8Name("submodule", name); err != nil {
			return nil, err
		}
		status, err := sub.Status()
		if err != nil {
			return nil, err
		}

		state := repo.SubmoduleClean
		switch {
		case status.Current.IsZero():
			state = repo.SubmoduleUninitialized
		case status.Current != status.Expected:
			state = repo.SubmoduleOutOfDate
		}

		if state != repo.SubmoduleUninitialized {
			if dirty, err := submoduleDirty(sub); err == nil && dirty {
				state = repo.SubmoduleChanged
			}
		}

		out = append(out, repo.SubmoduleStatus{Name: repo.SubmoduleName(name), State: state})
	}
	return out, nil
}

// submoduleDirty reports whether the submodule's own working tree has
// uncommitted changes or untracked files.
func submoduleDirty(sub *git.Submodule) (bool, error) {
	r, err := sub.Repository()
	if err != nil {
		return false, err
	}
	wt, err := r.Worktree()
	if err != nil {
		return false, err
	}
	st, err := wt.Status()
	if err != nil {
		return false, err
	}
	return !st.IsClean(), nil
}

// branchTrackingList builds the RepoStatus "branches" list: every local
// branch paired with its upstream tracking state, if any.
func (h *Handle) branchTrackingList(ctx context.Context) ([]repo.BranchStatus, error) {
	iter, err := h.gitRepo.Branches()
	if err != nil {
		return nil, err
	}

	var statuses []repo.BranchStatus
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if err := utf8Name("branch", name); err != nil {
			return err
		}
		bs := repo.BranchStatus{Local: repo.BranchName(name)}

		remoteName, remoteBranch, ok := h.Upstream(ctx, repo.BranchName(name))
		if ok {
			upstream := remoteName
			bs.Upstream = &upstream
			ahead, behind, err := h.GraphAheadBehind(ctx, name, string(remoteName)+"/"+string(remoteBranch))
			if err == nil {
				bs.Tracking = &repo.RemoteTrackingStatus{
					Kind:        trackingKind(ahead, behind),
					AheadCount:  ahead,
					BehindCount: behind,
				}
			}
		}
		statuses = append(statuses, bs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

func trackingKind(ahead, behind int) repo.TrackingKind {
	switch {
	case ahead == 0 && behind == 0:
		return repo.UpToDate
	case ahead > 0 && behind == 0:
		return repo.Ahead
	case ahead == 0 && behind > 0:
		return repo.Behind
	default:
		return repo.Diverged
	}
}
