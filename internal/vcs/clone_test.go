package vcs

import (
	"context"
	"testing"

	"github.com/utilitywarehouse/git-workspace/repo"
)

func TestClonePlainRenamesRemoteAndTracksHead(t *testing.T) {
	source := t.TempDir()
	initRepo(t, source)
	runGit(t, source, "branch", "feature")

	dest := t.TempDir()
	remote := repo.Remote{Name: "origin", URL: repo.RemoteUrl("file://" + source), Type: repo.File}

	h, err := Clone(context.Background(), remote, "upstream", dest, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	if _, ok, err := h.FindRemote(context.Background(), "upstream"); err != nil || !ok {
		t.Fatalf("FindRemote(upstream) = %v, %v, want ok", ok, err)
	}
	if _, ok, _ := h.FindRemote(context.Background(), "origin"); ok {
		t.Error("origin must have been renamed away")
	}

	if _, ok, err := h.FindLocalBranch(context.Background(), "main"); err != nil || !ok {
		t.Fatalf("FindLocalBranch(main) = %v, %v, want ok (tracking branch created)", ok, err)
	}
	if _, ok, err := h.FindLocalBranch(context.Background(), "feature"); err != nil || !ok {
		t.Fatalf("FindLocalBranch(feature) = %v, %v, want ok (tracking branch created)", ok, err)
	}

	remoteName, remoteBranch, ok := h.Upstream(context.Background(), "main")
	if !ok || remoteName != "upstream" || remoteBranch != "main" {
		t.Fatalf("Upstream(main) = %q, %q, %v, want upstream, main, true", remoteName, remoteBranch, ok)
	}
}

func TestCloneWorktreeLayout(t *testing.T) {
	source := t.TempDir()
	initRepo(t, source)

	dest := t.TempDir()
	remote := repo.Remote{Name: "origin", URL: repo.RemoteUrl("file://" + source), Type: repo.File}

	h, err := Clone(context.Background(), remote, "origin", dest, repo.Worktree)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if h.WorktreeSetup() != repo.Worktree {
		t.Error("expected worktree setup")
	}
	out := runGit(t, h.GitDir(), "config", "--get", "push.default")
	if trim(out) != "upstream" {
		t.Errorf("push.default = %q, want upstream", out)
	}
}
