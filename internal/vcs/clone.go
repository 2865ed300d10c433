package vcs

import (
	"context"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/utilitywarehouse/git-workspace/repo"
)

// Clone clones remote to path under remoteName ("origin" when empty),
// bare iff worktree layout. Ssh remotes authenticate through the ssh
// agent. After cloning: push.default=upstream for worktree layout; a
// local branch is created for every remote branch except HEAD; the head
// branch's upstream is pointed at the configured remote.
func Clone(ctx context.Context, remote repo.Remote, remoteName repo.RemoteName, path string, setup repo.WorktreeSetup, opts ...Option) (*Handle, error) {
	h := newHandle(path, setup, opts)
	bare := setup == repo.Worktree

	if err := os.MkdirAll(h.gitDir, 0o755); err != nil {
		return nil, err
	}

	name := string(remoteName)
	if name == "" {
		name = "origin"
	}

	storer, worktree := billyStorer(h.gitDir, bare)
	gr, err := git.CloneContext(ctx, storer, worktree, &git.CloneOptions{
		URL:        string(remote.URL),
		RemoteName: name,
		Auth:       sshAuth(string(remote.URL)),
	})
	if err != nil {
		return nil, err
	}
	h.gitRepo = gr

	if bare {
		if err := h.setConfigOption("push", "default", "upstream"); err != nil {
			return nil, err
		}
	}

	// a local branch for every remote branch except HEAD
	refIter, err := gr.References()
	if err != nil {
		return nil, err
	}
	prefix := "refs/remotes/" + name + "/"
	err = refIter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference || !strings.HasPrefix(string(ref.Name()), prefix) {
			return nil
		}
		short := strings.TrimPrefix(string(ref.Name()), prefix)
		if short == "HEAD" || short == "" {
			return nil
		}
		branchRef := plumbing.NewBranchReferenceName(short)
		if _, err := gr.Reference(branchRef, false); err == nil {
			return nil // already present, typically the clone's default branch
		}
		return gr.Storer.SetReference(plumbing.NewHashReference(branchRef, ref.Hash()))
	})
	if err != nil {
		return nil, err
	}

	if headBranch, err := h.DefaultBranch(ctx); err == nil && headBranch != "" {
		if err := h.SetUpstream(ctx, headBranch, repo.RemoteName(name), headBranch); err != nil {
			return nil, err
		}
		if bare {
			headRef := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(string(headBranch)))
			if err := gr.Storer.SetReference(headRef); err != nil {
				return nil, err
			}
		}
	}

	return h, nil
}
