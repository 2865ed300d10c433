package worktree

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/utilitywarehouse/git-workspace/config"
	"github.com/utilitywarehouse/git-workspace/internal/vcs"
	"github.com/utilitywarehouse/git-workspace/repo"
)

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v: %s", args, err, out)
	}
	return string(out)
}

func writeAndCommit(t *testing.T, dir, name, content, message string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", name)
	runGit(t, dir, "commit", "-q", "-m", message)
}

func trim(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// newBareSource creates a plain repository with one commit on "main" and
// returns its directory, usable directly as a local clone source.
func newBareSource(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q", "-b", "main")
	runGit(t, dir, "config", "user.name", "test")
	runGit(t, dir, "config", "user.email", "test@example.com")
	if err := os.WriteFile(dir+"/README.md", []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "-q", "-m", "initial commit")
	return dir
}

// newEngine builds a fresh worktree-layout repository cloned from a local
// source and returns its Engine alongside the root directory. The clone
// populates refs/remotes/origin/* so tracking/commit selection has remote
// branches to resolve.
func newEngine(t *testing.T, root *config.WorktreeRootConfig) (*Engine, string) {
	t.Helper()
	source := newBareSource(t)
	dir := t.TempDir()

	remote := repo.Remote{Name: "origin", URL: repo.RemoteUrl("file://" + source), Type: repo.File}
	h, err := vcs.Clone(context.Background(), remote, "origin", dir, repo.Worktree)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	return New(h, repo.Repo{Name: "fixture", WorktreeSetup: repo.Worktree}, root, nil), dir
}
