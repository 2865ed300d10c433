package worktree

import (
	"context"
	"fmt"

	"github.com/utilitywarehouse/git-workspace/repo"
)

// AddResult reports what Add actually did, since large parts of its
// selection logic are "pick one of several implicit outcomes and maybe
// warn".
type AddResult struct {
	Created        bool // a new local branch was created
	Warnings       []string
	UpstreamSet    bool
	Upstream       repo.RemoteName
	UpstreamBranch repo.BranchName
}

// Add creates a new worktree (and its backing local branch, if absent),
// applying the three-phase branch/commit/tracking selection below.
func (e *Engine) Add(ctx context.Context, name repo.WorktreeName, tracking TrackingSelection) (AddResult, error) {
	var result AddResult

	if _, err := repo.NewWorktreeName(string(name)); err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidWorktreeName, err)
	}

	existing, err := e.handle.GetWorktrees(ctx)
	if err != nil {
		return result, err
	}
	for _, w := range existing {
		if w.Name == name {
			return result, fmt.Errorf("%w: %s", ErrWorktreeAlreadyExists, name)
		}
	}

	branch := repo.BranchName(name)

	// Step A: the local branch.
	_, exists, err := e.handle.FindLocalBranch(ctx, branch)
	if err != nil {
		return result, err
	}
	result.Created = !exists

	if result.Created {
		commit, warn, err := e.selectCommit(ctx, branch, tracking)
		if err != nil {
			return result, err
		}
		if warn != "" {
			result.Warnings = append(result.Warnings, warn)
		}
		if err := e.handle.CreateBranch(ctx, branch, commit); err != nil {
			return result, err
		}

		if err := e.applyTracking(ctx, branch, tracking, &result); err != nil {
			return result, err
		}
	}

	if err := e.handle.EnsureWorktreeAdminDirs(name, e.pathFor(name)); err != nil {
		return result, err
	}
	if err := e.handle.AddWorktree(ctx, name, e.pathFor(name), branch); err != nil {
		return result, err
	}

	return result, nil
}

// selectCommit implements Step B: the commit for a newly created local
// branch. It never consults tracking beyond an Explicit remote/branch pair.
func (e *Engine) selectCommit(ctx context.Context, branch repo.BranchName, tracking TrackingSelection) (commit, warning string, err error) {
	defaultHead := func() (string, error) {
		db, err := e.handle.DefaultBranch(ctx)
		if err != nil {
			return "", err
		}
		c, err := e.handle.CommitHash(ctx, "refs/heads/"+string(db))
		if err != nil {
			return "", err
		}
		return c, nil
	}

	if tracking.Kind == Explicit {
		if ok, _ := e.handle.FindRemoteBranch(ctx, tracking.Remote, tracking.Branch); ok {
			c, err := e.handle.CommitHash(ctx, "refs/remotes/"+string(tracking.Remote)+"/"+string(tracking.Branch))
			if err != nil {
				return "", "", err
			}
			if c != "" {
				return c, "", nil
			}
		}
		c, err := defaultHead()
		return c, "", err
	}

	remotes, err := e.handle.Remotes(ctx)
	if err != nil {
		return "", "", err
	}

	switch len(remotes) {
	case 0:
		c, err := defaultHead()
		return c, "", err
	case 1:
		if c, found, err := e.resolveRemoteCommit(ctx, remotes[0].Name, branch); err != nil {
			return "", "", err
		} else if found {
			return c, "", nil
		}
		c, err := defaultHead()
		return c, "", err
	default:
		if def := e.root.DefaultRemote(); def != "" {
			if _, ok, err := e.handle.FindRemote(ctx, repo.RemoteName(def)); err != nil {
				return "", "", err
			} else if !ok {
				return "", "", fmt.Errorf("%w: %s", ErrRemoteNotFound, def)
			}
			if c, found, err := e.resolveRemoteCommit(ctx, repo.RemoteName(def), branch); err != nil {
				return "", "", err
			} else if found {
				return c, "", nil
			}
			c, err := defaultHead()
			return c, "", err
		}

		commits := map[string]bool{}
		for _, r := range remotes {
			if c, found, err := e.resolveRemoteCommit(ctx, r.Name, branch); err == nil && found {
				commits[c] = true
			}
		}
		switch len(commits) {
		case 0:
			c, err := defaultHead()
			return c, "", err
		case 1:
			for c := range commits {
				return c, "", nil
			}
		}
		c, err := defaultHead()
		return c, "remote branches for " + string(branch) + " disagree on commit; using default-branch head", err
	}
}

// resolveRemoteCommit tries remote/<prefix>/<name> before remote/<name>,
// the prefix-then-plain rule.
func (e *Engine) resolveRemoteCommit(ctx context.Context, remote repo.RemoteName, branch repo.BranchName) (commit string, found bool, err error) {
	for _, b := range e.candidateBranches(branch) {
		ok, err := e.handle.FindRemoteBranch(ctx, remote, b)
		if err != nil {
			return "", false, err
		}
		if !ok {
			continue
		}
		c, err := e.handle.CommitHash(ctx, "refs/remotes/"+string(remote)+"/"+string(b))
		if err != nil {
			return "", false, err
		}
		if c != "" {
			return c, true, nil
		}
	}
	return "", false, nil
}

func (e *Engine) candidateBranches(branch repo.BranchName) []repo.BranchName {
	prefix := e.root.DefaultRemotePrefix()
	if prefix == "" {
		return []repo.BranchName{branch}
	}
	return []repo.BranchName{repo.BranchName(prefix + "/" + string(branch)), branch}
}

// applyTracking implements Step C, and is only reached when the local
// branch was freshly created.
func (e *Engine) applyTracking(ctx context.Context, branch repo.BranchName, tracking TrackingSelection, result *AddResult) error {
	var remoteName repo.RemoteName
	var remoteBranch repo.BranchName
	var set bool

	switch tracking.Kind {
	case Disabled:
		return nil
	case Explicit:
		remoteName, remoteBranch, set = tracking.Remote, tracking.Branch, true
	case Automatic:
		if !e.root.TrackingEnabled() {
			return nil
		}
		remotes, err := e.handle.Remotes(ctx)
		if err != nil {
			return err
		}
		switch len(remotes) {
		case 0:
			return nil
		case 1:
			remoteName = remotes[0].Name
			remoteBranch = branch
			if p := e.root.DefaultRemotePrefix(); p != "" {
				remoteBranch = repo.BranchName(p + "/" + string(branch))
			}
			set = true
		default:
			if d := e.root.DefaultRemote(); d != "" {
				remoteName = repo.RemoteName(d)
				remoteBranch = branch
				set = true
			}
		}
	}

	if !set {
		return nil
	}

	remote, ok, err := e.handle.FindRemote(ctx, remoteName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRemoteNotFound, remoteName)
	}

	remoteExists, err := e.handle.FindRemoteBranch(ctx, remoteName, remoteBranch)
	if err != nil {
		return err
	}

	if remoteExists {
		remoteCommit, err := e.handle.CommitHash(ctx, "refs/remotes/"+string(remoteName)+"/"+string(remoteBranch))
		if err == nil && remoteCommit != "" {
			localCommit, _ := e.handle.CommitHash(ctx, "refs/heads/"+string(branch))
			if localCommit != "" && localCommit != remoteCommit {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"local branch %s diverges from %s/%s; worktree left unsynchronised", branch, remoteName, remoteBranch))
			}
		}
	} else {
		if !remote.Pushable() {
			return fmt.Errorf("%w: %s", ErrRemoteNotPushable, remoteName)
		}
		if err := e.handle.Push(ctx, remote, branch, remoteBranch); err != nil {
			return err
		}
	}

	if err := e.handle.SetUpstream(ctx, branch, remoteName, remoteBranch); err != nil {
		return err
	}
	result.UpstreamSet = true
	result.Upstream = remoteName
	result.UpstreamBranch = remoteBranch
	return nil
}
