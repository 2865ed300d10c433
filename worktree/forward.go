package worktree

import (
	"context"

	"github.com/utilitywarehouse/git-workspace/internal/vcs"
	"github.com/utilitywarehouse/git-workspace/repo"
)

// stashWrap is the shared wrapper for ForwardBranch and
// RebaseOntoDefault: optionally stash a dirty worktree, run op, then
// unstash on every exit path. worktreePath is always a single linked
// worktree's own directory, opened as a plain checkout (its ".git" file
// redirects to the admin directory's per-worktree metadata) regardless
// of the engine's own root setup.
func (e *Engine) stashWrap(ctx context.Context, worktreePath string, stash bool, op func() (string, error)) (string, error) {
	status, err := e.handle.Status(ctx, worktreePath)
	if err != nil {
		return "", err
	}
	dirty := status.Changes != nil && !status.Changes.Empty()

	if dirty && !stash {
		return "Worktree contains changes", nil
	}

	if dirty {
		if err := vcs.Stash(ctx, worktreePath, repo.NoWorktree); err != nil {
			return "", err
		}
		defer func() { _ = vcs.StashPop(ctx, worktreePath, repo.NoWorktree) }()
	}

	return op()
}

// ForwardBranch fast-forwards (or rebases) the branch checked out at
// worktreePath onto its upstream.
func (e *Engine) ForwardBranch(ctx context.Context, name repo.WorktreeName, rebase, stash bool) (string, error) {
	worktreePath := e.pathFor(name)
	branch := repo.BranchName(name)

	remoteName, remoteBranch, ok := e.handle.Upstream(ctx, branch)
	if !ok {
		return "no upstream configured", nil
	}
	upstream := string(remoteName) + "/" + string(remoteBranch)

	return e.stashWrap(ctx, worktreePath, stash, func() (string, error) {
		if rebase {
			return "", e.handle.RebaseOnto(ctx, worktreePath, upstream)
		}

		upToDate, fastForward, err := e.handle.MergeAnalysis(ctx, worktreePath, string(branch), upstream)
		if err != nil {
			return "", err
		}
		if upToDate {
			return "", nil
		}
		if !fastForward {
			return "not a fast-forward; branch has diverged from " + upstream, nil
		}
		return "", e.handle.HardResetTo(ctx, worktreePath, upstream)
	})
}

// RebaseOntoDefault rebases the branch checked out at name's worktree onto
// the first configured persistent branch, or the default branch.
func (e *Engine) RebaseOntoDefault(ctx context.Context, name repo.WorktreeName, stash bool) (string, error) {
	worktreePath := e.pathFor(name)

	base, err := e.baseBranch(ctx)
	if err != nil {
		return "", err
	}

	return e.stashWrap(ctx, worktreePath, stash, func() (string, error) {
		return "", e.handle.RebaseOnto(ctx, worktreePath, string(base))
	})
}

func (e *Engine) baseBranch(ctx context.Context) (repo.BranchName, error) {
	if e.root != nil && len(e.root.PersistentBranches) > 0 {
		return repo.BranchName(e.root.PersistentBranches[0]), nil
	}
	return e.handle.DefaultBranch(ctx)
}
