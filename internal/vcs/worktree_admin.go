package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/utilitywarehouse/git-workspace/repo"
)

// WorktreeInfo describes one entry from `git worktree list`.
type WorktreeInfo struct {
	Name   repo.WorktreeName
	Path   string
	Branch repo.BranchName // "" if detached
	Bare   bool
}

// GetWorktrees enumerates the linked worktrees registered against this
// repository's admin directory. go-git has no linked-worktree API, so
// this parses `git worktree list --porcelain`.
func (h *Handle) GetWorktrees(ctx context.Context) ([]WorktreeInfo, error) {
	out, err := h.git(ctx, "", "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var worktrees []WorktreeInfo
	var cur *WorktreeInfo
	var nameErr error
	flush := func() {
		if cur != nil && !cur.Bare {
			base := filepath.Base(cur.Path)
			if err := utf8Name("worktree", base); err != nil && nameErr == nil {
				nameErr = err
				return
			}
			cur.Name = repo.WorktreeName(base)
			worktrees = append(worktrees, *cur)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur = &WorktreeInfo{Path: strings.TrimPrefix(line, "worktree ")}
		case line == "bare":
			if cur != nil {
				cur.Bare = true
			}
		case strings.HasPrefix(line, "branch "):
			if cur != nil {
				cur.Branch = repo.BranchName(strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/"))
			}
		}
	}
	flush()
	if nameErr != nil {
		return nil, nameErr
	}

	return worktrees, nil
}

// PruneWorktree removes the administrative registration for a worktree
// whose on-disk directory has already been deleted.
func (h *Handle) PruneWorktree(ctx context.Context, name repo.WorktreeName) error {
	_, err := h.git(ctx, "", "worktree", "prune")
	_ = name // git worktree prune is not addressable by name; it sweeps all stale entries
	return err
}

// EnsureWorktreeAdminDirs ensures the parent directories `git worktree add`
// needs exist before creating a worktree whose name contains "/": the
// parent of .git-main-working-tree/worktrees/<name>, and the parent of
// the on-disk worktree path itself.
func (h *Handle) EnsureWorktreeAdminDirs(name repo.WorktreeName, worktreePath string) error {
	adminParent := filepath.Dir(filepath.Join(h.gitDir, "worktrees", string(name)))
	if err := os.MkdirAll(adminParent, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(worktreePath), 0o755)
}

// AddWorktree creates a linked worktree at path checked out to branch.
func (h *Handle) AddWorktree(ctx context.Context, name repo.WorktreeName, path string, branch repo.BranchName) error {
	if err := h.EnsureWorktreeAdminDirs(name, path); err != nil {
		return err
	}
	_, err := h.git(ctx, "", "worktree", "add", path, string(branch))
	return err
}

// RemoveWorktreePhysical deletes a worktree's on-disk directory, then walks
// up its path within baseDir deleting now-empty ancestor directories
// (never baseDir itself), then prunes and deletes the local branch.
func (h *Handle) RemoveWorktreePhysical(ctx context.Context, name repo.WorktreeName, worktreePath, baseDir string) error {
	if err := os.RemoveAll(worktreePath); err != nil {
		return err
	}

	dir := filepath.Dir(worktreePath)
	base := filepath.Clean(baseDir)
	for dir != base && strings.HasPrefix(dir, base+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}

	if err := h.PruneWorktree(ctx, name); err != nil {
		return err
	}
	return h.DeleteBranch(ctx, repo.BranchName(name))
}

// ConvertToWorktree runs the conversion state machine: status must
// be clean, no ignored files, rename .git to the admin directory, remove
// every other top-level entry, reopen bare with push.default=upstream.
// Any failure aborts with no further writes, per step ordering.
func ConvertToWorktree(ctx context.Context, rootDir string, opts ...Option) (*Handle, error) {
	h, err := Open(rootDir, repo.NoWorktree, opts...)
	if err != nil {
		return nil, err
	}

	status, err := h.Status(ctx, rootDir)
	if err != nil {
		return nil, err
	}
	if status.Changes != nil && !status.Changes.Empty() {
		return nil, fmt.Errorf("%w: new=%d modified=%d deleted=%d", ErrChanges,
			status.Changes.New, status.Changes.Modified, status.Changes.Deleted)
	}

	ignored, err := h.HasIgnoredFiles(ctx, rootDir)
	if err != nil {
		return nil, err
	}
	if ignored {
		return nil, ErrIgnored
	}

	oldGitDir := filepath.Join(rootDir, ".git")
	newGitDir := filepath.Join(rootDir, AdminDirName)
	if err := os.Rename(oldGitDir, newGitDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenameError, err)
	}

	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadDirectoryError, err)
	}
	for _, e := range entries {
		if e.Name() == AdminDirName {
			continue
		}
		full := filepath.Join(rootDir, e.Name())
		if err := os.RemoveAll(full); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRemoveError, e.Name(), err)
		}
	}

	wh, err := Open(rootDir, repo.Worktree, opts...)
	if err != nil {
		return nil, err
	}
	if err := wh.setBare(true); err != nil {
		return nil, err
	}
	if err := wh.setConfigOption("push", "default", "upstream"); err != nil {
		return nil, err
	}

	return wh, nil
}

// Stash saves local changes including untracked files, and StashPop
// reinstates them including the index. go-git has no stash support, so
// both shell out; each takes a fresh open of the same path because the
// stash needs its own mutable view of the repository.
func Stash(ctx context.Context, path string, setup repo.WorktreeSetup, opts ...Option) error {
	h := newHandle(path, setup, opts)
	if _, _, err := openCheckout(path); err != nil {
		return err
	}
	_, err := h.git(ctx, path, "stash", "push", "--include-untracked")
	return err
}

func StashPop(ctx context.Context, path string, setup repo.WorktreeSetup, opts ...Option) error {
	h := newHandle(path, setup, opts)
	if _, _, err := openCheckout(path); err != nil {
		return err
	}
	_, err := h.git(ctx, path, "stash", "pop", "--index")
	return err
}

// Push pushes local to remote's remoteBranch, reporting a PushFailedError
// on failure.
func (h *Handle) Push(ctx context.Context, remote repo.Remote, local repo.BranchName, remoteBranch repo.BranchName) error {
	if !remote.Pushable() {
		return fmt.Errorf("%w: %s", ErrNonPushableRemote, remote.Name)
	}
	refspec := gitconfig.RefSpec("refs/heads/" + string(local) + ":refs/heads/" + string(remoteBranch))
	err := h.gitRepo.PushContext(ctx, &git.PushOptions{
		RemoteName: string(remote.Name),
		RefSpecs:   []gitconfig.RefSpec{refspec},
		Auth:       sshAuth(string(remote.URL)),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return &PushFailedError{
			Local:   string(local),
			Remote:  string(remote.Name),
			URL:     string(remote.URL),
			Message: err.Error(),
		}
	}
	return nil
}

// HardResetTo resets the checkout at cwd to ref, discarding local changes.
// Used by ForwardBranch's fast-forward path.
func (h *Handle) HardResetTo(ctx context.Context, cwd string, ref string) error {
	checkout, wt, err := openCheckout(cwd)
	if err != nil {
		return err
	}
	hash, err := checkout.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, ref)
	}
	return wt.Reset(&git.ResetOptions{Commit: *hash, Mode: git.HardReset})
}

// MergeAnalysis reports whether upstream is already merged into local, and
// whether local could fast-forward onto it, without mutating anything.
func (h *Handle) MergeAnalysis(ctx context.Context, cwd, local, upstream string) (upToDate, fastForward bool, err error) {
	checkout, _, err := openCheckout(cwd)
	if err != nil {
		return false, false, err
	}

	localHash, err := checkout.ResolveRevision(plumbing.Revision(local))
	if err != nil {
		return false, false, fmt.Errorf("%w: %s", ErrBranchNotFound, local)
	}
	upstreamHash, err := checkout.ResolveRevision(plumbing.Revision(upstream))
	if err != nil {
		return false, false, fmt.Errorf("%w: %s", ErrBranchNotFound, upstream)
	}
	if *localHash == *upstreamHash {
		return true, true, nil
	}

	localCommit, err := checkout.CommitObject(*localHash)
	if err != nil {
		return false, false, err
	}
	upstreamCommit, err := checkout.CommitObject(*upstreamHash)
	if err != nil {
		return false, false, err
	}
	bases, err := localCommit.MergeBase(upstreamCommit)
	if err != nil {
		return false, false, err
	}
	for _, base := range bases {
		if base.Hash == *localHash {
			return false, true, nil
		}
	}
	return false, false, nil
}

// RebaseOnto rebases the branch checked out at cwd onto base. go-git has
// no rebase support, so the loop drives the git binary. Each step
// re-stages all paths before continuing, to absorb submodule changes; an
// already-applied (empty-after-rebase) step is skipped by
// `git rebase --skip`, any other conflict aborts the rebase.
func (h *Handle) RebaseOnto(ctx context.Context, cwd, base string) error {
	if _, err := h.git(ctx, cwd, "rebase", base); err == nil {
		return nil
	}
	for {
		if _, addErr := h.git(ctx, cwd, "add", "."); addErr != nil {
			_, _ = h.git(ctx, cwd, "rebase", "--abort")
			return addErr
		}
		_, contErr := h.git(ctx, cwd, "rebase", "--continue")
		if contErr == nil {
			return nil
		}
		msg := strings.ToLower(contErr.Error())
		if strings.Contains(msg, "nothing to commit") || strings.Contains(msg, "already applied") {
			if _, skipErr := h.git(ctx, cwd, "rebase", "--skip"); skipErr == nil {
				continue
			}
		}
		_, _ = h.git(ctx, cwd, "rebase", "--abort")
		return contErr
	}
}
