package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/utilitywarehouse/git-workspace/repo"
)

// HeadBranch returns the branch currently checked out in the main
// repository (not a linked worktree). ErrNoBranchCheckedOut if HEAD is
// detached.
func (h *Handle) HeadBranch(ctx context.Context) (repo.BranchName, error) {
	head, err := h.gitRepo.Head()
	if err != nil || !head.Name().IsBranch() {
		return "", fmt.Errorf("%w", ErrNoBranchCheckedOut)
	}
	name := head.Name().Short()
	if err := utf8Name("branch", name); err != nil {
		return "", err
	}
	return repo.BranchName(name), nil
}

// FindLocalBranch returns the local branch named name, and whether it
// exists.
func (h *Handle) FindLocalBranch(ctx context.Context, name repo.BranchName) (repo.BranchName, bool, error) {
	if _, err := h.gitRepo.Reference(plumbing.NewBranchReferenceName(string(name)), true); err != nil {
		return "", false, nil
	}
	return name, true, nil
}

// FindRemoteBranch returns whether the remote-tracking branch remote/name
// exists.
func (h *Handle) FindRemoteBranch(ctx context.Context, remote repo.RemoteName, name repo.BranchName) (bool, error) {
	if _, err := h.gitRepo.Reference(plumbing.NewRemoteReferenceName(string(remote), string(name)), true); err != nil {
		return false, nil
	}
	return true, nil
}

// CommitHash returns the commit hash ref resolves to, or "" if it does
// not exist.
func (h *Handle) CommitHash(ctx context.Context, ref string) (string, error) {
	hash, err := h.gitRepo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", nil
	}
	return hash.String(), nil
}

// CreateBranch creates local branch name pointing at commit.
func (h *Handle) CreateBranch(ctx context.Context, name repo.BranchName, commit string) error {
	hash, err := h.gitRepo.ResolveRevision(plumbing.Revision(commit))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, commit)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(string(name)), *hash)
	return h.gitRepo.Storer.SetReference(ref)
}

// DeleteBranch removes local branch name and any upstream configuration
// recorded for it.
func (h *Handle) DeleteBranch(ctx context.Context, name repo.BranchName) error {
	refName := plumbing.NewBranchReferenceName(string(name))
	if _, err := h.gitRepo.Reference(refName, false); err != nil {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	if err := h.gitRepo.Storer.RemoveReference(refName); err != nil {
		return err
	}

	cfg, err := h.gitRepo.Config()
	if err != nil {
		return err
	}
	if _, ok := cfg.Branches[string(name)]; ok {
		delete(cfg.Branches, string(name))
		return h.gitRepo.SetConfig(cfg)
	}
	return nil
}

// SetUpstream points branch's upstream at remote/remoteBranch.
func (h *Handle) SetUpstream(ctx context.Context, branch repo.BranchName, remote repo.RemoteName, remoteBranch repo.BranchName) error {
	cfg, err := h.gitRepo.Config()
	if err != nil {
		return err
	}
	if cfg.Branches == nil {
		cfg.Branches = map[string]*gitconfig.Branch{}
	}
	cfg.Branches[string(branch)] = &gitconfig.Branch{
		Name:   string(branch),
		Remote: string(remote),
		Merge:  plumbing.NewBranchReferenceName(string(remoteBranch)),
	}
	return h.gitRepo.SetConfig(cfg)
}

// Upstream returns the configured upstream remote/branch for branch, if
// any.
func (h *Handle) Upstream(ctx context.Context, branch repo.BranchName) (repo.RemoteName, repo.BranchName, bool) {
	cfg, err := h.gitRepo.Config()
	if err != nil {
		return "", "", false
	}
	b, ok := cfg.Branches[string(branch)]
	if !ok || b.Remote == "" || b.Merge == "" {
		return "", "", false
	}
	return repo.RemoteName(b.Remote), repo.BranchName(strings.TrimPrefix(string(b.Merge), "refs/heads/")), true
}

// GetRemoteDefaultBranch resolves the default branch for a single remote.
func (h *Handle) GetRemoteDefaultBranch(ctx context.Context, remote repo.RemoteName) (repo.BranchName, error) {
	// Step 1: if reachable, take the remote's advertised HEAD symref and
	// resolve it to a local branch.
	if rem, err := h.gitRepo.Remote(string(remote)); err == nil {
		var auth transport.AuthMethod
		if urls := rem.Config().URLs; len(urls) > 0 {
			auth = sshAuth(urls[0])
		}
		if refs, err := rem.ListContext(ctx, &git.ListOptions{Auth: auth}); err == nil {
			for _, ref := range refs {
				if ref.Name() != plumbing.HEAD || ref.Type() != plumbing.SymbolicReference {
					continue
				}
				branch := repo.BranchName(strings.TrimPrefix(string(ref.Target()), "refs/heads/"))
				if _, ok, _ := h.FindLocalBranch(ctx, branch); ok {
					return branch, nil
				}
			}
		}
	}

	// Step 2: fall back to the cached refs/remotes/<remote>/HEAD symref.
	ref, err := h.gitRepo.Reference(plumbing.ReferenceName("refs/remotes/"+string(remote)+"/HEAD"), false)
	if err != nil {
		return "", nil // no opinion; caller treats as "none"
	}
	if ref.Type() != plumbing.SymbolicReference {
		return "", fmt.Errorf("%w: %s", ErrRemoteHeadNoSymbolic, ref.Name())
	}
	prefix := "refs/remotes/" + string(remote) + "/"
	target := string(ref.Target())
	if !strings.HasPrefix(target, prefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRemoteHead, target)
	}
	branch := strings.TrimPrefix(target, prefix)
	if branch == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidRemoteHead, target)
	}
	if _, ok, _ := h.FindLocalBranch(ctx, repo.BranchName(branch)); !ok {
		return "", nil
	}
	return repo.BranchName(branch), nil
}

// DefaultBranch resolves the repository-wide default branch.
func (h *Handle) DefaultBranch(ctx context.Context) (repo.BranchName, error) {
	remotes, err := h.Remotes(ctx)
	if err != nil {
		return "", err
	}

	switch len(remotes) {
	case 0:
		// no remotes: fall through to local main/master fallback
	case 1:
		if b, err := h.GetRemoteDefaultBranch(ctx, remotes[0].Name); err == nil && b != "" {
			return b, nil
		}
	default:
		var agreed repo.BranchName
		conflict := false
		any := false
		for _, r := range remotes {
			b, err := h.GetRemoteDefaultBranch(ctx, r.Name)
			if err != nil || b == "" {
				continue
			}
			any = true
			if agreed == "" {
				agreed = b
			} else if agreed != b {
				conflict = true
			}
		}
		if any && !conflict {
			return agreed, nil
		}
	}

	for _, candidate := range []repo.BranchName{"main", "master"} {
		if _, ok, _ := h.FindLocalBranch(ctx, candidate); ok {
			return candidate, nil
		}
	}

	return "", ErrNoDefaultBranch
}

// GraphAheadBehind returns how many commits local is ahead of and behind
// remoteBranch, by walking the commit graph on both sides of their merge
// base.
func (h *Handle) GraphAheadBehind(ctx context.Context, local, remoteBranch string) (ahead, behind int, err error) {
	localCommit, err := h.commitAt(local)
	if err != nil {
		return 0, 0, err
	}
	remoteCommit, err := h.commitAt(remoteBranch)
	if err != nil {
		return 0, 0, err
	}

	ahead, err = countExclusiveCommits(localCommit, remoteCommit)
	if err != nil {
		return 0, 0, err
	}
	behind, err = countExclusiveCommits(remoteCommit, localCommit)
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

func (h *Handle) commitAt(rev string) (*object.Commit, error) {
	hash, err := h.gitRepo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, rev)
	}
	return h.gitRepo.CommitObject(*hash)
}

// countExclusiveCommits counts commits reachable from tip but not from
// other. Every ancestor of other is collected first, then the walk from
// tip skips (and prunes at) that set.
func countExclusiveCommits(tip, other *object.Commit) (int, error) {
	reachable := map[plumbing.Hash]bool{}
	err := object.NewCommitPreorderIter(other, nil, nil).ForEach(func(c *object.Commit) error {
		reachable[c.Hash] = true
		return nil
	})
	if err != nil {
		return 0, err
	}

	count := 0
	err = object.NewCommitPreorderIter(tip, reachable, nil).ForEach(func(c *object.Commit) error {
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
