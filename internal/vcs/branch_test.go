package vcs

import (
	"context"
	"errors"
	"testing"

	"github.com/utilitywarehouse/git-workspace/repo"
)

func TestHeadBranch(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	b, err := h.HeadBranch(context.Background())
	if err != nil {
		t.Fatalf("HeadBranch: %v", err)
	}
	if b != "main" {
		t.Errorf("HeadBranch() = %q, want main", b)
	}
}

func TestHeadBranchDetached(t *testing.T) {
	dir := t.TempDir()
	commit := initRepo(t, dir)
	runGit(t, dir, "checkout", "-q", commit)

	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := h.HeadBranch(context.Background()); !errors.Is(err, ErrNoBranchCheckedOut) {
		t.Fatalf("HeadBranch() = %v, want ErrNoBranchCheckedOut", err)
	}
}

func TestFindLocalBranch(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	runGit(t, dir, "branch", "feature")

	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	if _, ok, err := h.FindLocalBranch(ctx, "feature"); err != nil || !ok {
		t.Fatalf("FindLocalBranch(feature) = %v, %v, want ok", ok, err)
	}
	if _, ok, err := h.FindLocalBranch(ctx, "nope"); err != nil || ok {
		t.Fatalf("FindLocalBranch(nope) = %v, %v, want !ok", ok, err)
	}
}

func TestCreateBranchAndCommitHash(t *testing.T) {
	dir := t.TempDir()
	commit := initRepo(t, dir)

	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	if err := h.CreateBranch(ctx, "feature", commit); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	got, err := h.CommitHash(ctx, "refs/heads/feature")
	if err != nil {
		t.Fatalf("CommitHash: %v", err)
	}
	if got != commit {
		t.Errorf("CommitHash(feature) = %q, want %q", got, commit)
	}

	missing, err := h.CommitHash(ctx, "refs/heads/does-not-exist")
	if err != nil {
		t.Fatalf("CommitHash(missing): %v", err)
	}
	if missing != "" {
		t.Errorf("CommitHash(missing) = %q, want empty", missing)
	}
}

func TestSetUpstreamAndUpstream(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	if _, _, ok := h.Upstream(ctx, "main"); ok {
		t.Fatal("expected no upstream before one is set")
	}

	if err := h.NewRemote(ctx, "origin", "https://example.com/repo.git"); err != nil {
		t.Fatalf("NewRemote: %v", err)
	}
	runGit(t, dir, "update-ref", "refs/remotes/origin/main", "main")

	if err := h.SetUpstream(ctx, "main", "origin", "main"); err != nil {
		t.Fatalf("SetUpstream: %v", err)
	}

	remote, branch, ok := h.Upstream(ctx, "main")
	if !ok || remote != "origin" || branch != "main" {
		t.Fatalf("Upstream() = %q, %q, %v, want origin, main, true", remote, branch, ok)
	}
}

func TestDefaultBranchLocalFallback(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, err := h.DefaultBranch(context.Background())
	if err != nil {
		t.Fatalf("DefaultBranch: %v", err)
	}
	if b != "main" {
		t.Errorf("DefaultBranch() = %q, want main", b)
	}
}

func TestDefaultBranchNoneFound(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	runGit(t, dir, "branch", "-m", "trunk")

	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := h.DefaultBranch(context.Background()); !errors.Is(err, ErrNoDefaultBranch) {
		t.Fatalf("DefaultBranch() = %v, want ErrNoDefaultBranch", err)
	}
}

func TestGraphAheadBehind(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	runGit(t, dir, "branch", "feature")
	writeAndCommit(t, dir, "a.txt", "a", "on main")

	ahead, behind, err := h.GraphAheadBehind(ctx, "feature", "main")
	if err != nil {
		t.Fatalf("GraphAheadBehind: %v", err)
	}
	if ahead != 0 || behind != 1 {
		t.Errorf("GraphAheadBehind(feature, main) = %d, %d, want 0, 1", ahead, behind)
	}
}
