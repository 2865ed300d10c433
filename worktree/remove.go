package worktree

import (
	"context"
	"fmt"

	"github.com/utilitywarehouse/git-workspace/internal/vcs"
	"github.com/utilitywarehouse/git-workspace/repo"
)

// Remove deletes a worktree after passing its safety gates, unless
// force is true.
func (e *Engine) Remove(ctx context.Context, name repo.WorktreeName, force bool) error {
	worktrees, err := e.handle.GetWorktrees(ctx)
	if err != nil {
		return err
	}
	var target *vcs.WorktreeInfo
	for i := range worktrees {
		if worktrees[i].Name == name {
			target = &worktrees[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s", ErrDoesNotExist, name)
	}

	if !force {
		if target.Branch != repo.BranchName(name) {
			return fmt.Errorf("%w: worktree %s has %s checked out", ErrBranchNameMismatch, name, target.Branch)
		}

		status, err := e.handle.Status(ctx, target.Path)
		if err != nil {
			return err
		}
		if status.Changes != nil && !status.Changes.Empty() {
			return fmt.Errorf("%w: new=%d modified=%d deleted=%d", ErrChanges,
				status.Changes.New, status.Changes.Modified, status.Changes.Deleted)
		}

		if err := e.checkMerged(ctx, repo.BranchName(name)); err != nil {
			return err
		}

		if err := e.checkInSyncWithRemote(ctx, repo.BranchName(name)); err != nil {
			return err
		}
	}

	return e.handle.RemoveWorktreePhysical(ctx, name, target.Path, e.rootDir)
}

// checkMerged implements gate 4: the branch must be merged into the
// default branch, or into at least one configured persistent branch.
func (e *Engine) checkMerged(ctx context.Context, branch repo.BranchName) error {
	def, err := e.handle.DefaultBranch(ctx)
	if err != nil {
		return err
	}
	aheadDefault, _, err := e.handle.GraphAheadBehind(ctx, string(branch), string(def))
	if err != nil {
		return err
	}
	if aheadDefault == 0 {
		return nil
	}

	if e.root != nil {
		for _, p := range e.root.PersistentBranches {
			ahead, _, err := e.handle.GraphAheadBehind(ctx, string(branch), p)
			if err == nil && ahead == 0 {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: %s", ErrNotMerged, branch)
}

// checkInSyncWithRemote implements gate 5.
func (e *Engine) checkInSyncWithRemote(ctx context.Context, branch repo.BranchName) error {
	remoteName, remoteBranch, ok := e.handle.Upstream(ctx, branch)
	if !ok {
		// No upstream: there is nothing to compare against, so removal
		// still proceeds, whether or not persistent branches are
		// configured (compatibility behaviour).
		return nil
	}

	ahead, behind, err := e.handle.GraphAheadBehind(ctx, string(branch), string(remoteName)+"/"+string(remoteBranch))
	if err != nil {
		return err
	}
	if ahead != 0 || behind != 0 {
		return fmt.Errorf("%w: %s is %d ahead, %d behind %s/%s", ErrNotInSyncWithRemote, branch, ahead, behind, remoteName, remoteBranch)
	}
	return nil
}
