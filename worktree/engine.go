package worktree

import (
	"log/slog"
	"path/filepath"

	"github.com/utilitywarehouse/git-workspace/config"
	"github.com/utilitywarehouse/git-workspace/internal/vcs"
	"github.com/utilitywarehouse/git-workspace/repo"
)

// Engine operates the worktrees of one worktree-layout repository.
type Engine struct {
	handle  *vcs.Handle
	repo    repo.Repo
	root    *config.WorktreeRootConfig
	rootDir string
	log     *slog.Logger
}

// New builds an Engine over an already-open worktree-layout handle. root
// may be nil when no worktree-root config file is present.
func New(handle *vcs.Handle, rep repo.Repo, root *config.WorktreeRootConfig, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{handle: handle, repo: rep, root: root, rootDir: handle.RootDir(), log: log}
}

// pathFor returns the on-disk path a worktree named name is checked out
// at: a sibling of the admin directory, directly under the repository
// root.
func (e *Engine) pathFor(name repo.WorktreeName) string {
	return filepath.Join(e.rootDir, string(name))
}

// RootDir returns the worktree-layout repository's root directory.
func (e *Engine) RootDir() string { return e.rootDir }
