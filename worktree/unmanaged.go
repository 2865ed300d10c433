package worktree

import (
	"context"
	"os"

	"github.com/utilitywarehouse/git-workspace/internal/vcs"
)

// FindUnmanagedWorktrees lists entries directly under directory whose name
// is none of: the admin directory, the worktree-root config file name, the
// default branch name, or an existing worktree name.
func (e *Engine) FindUnmanagedWorktrees(ctx context.Context, directory, worktreeRootFileName string) ([]string, error) {
	def, err := e.handle.DefaultBranch(ctx)
	if err != nil {
		def = ""
	}

	worktrees, err := e.handle.GetWorktrees(ctx)
	if err != nil {
		return nil, err
	}
	known := map[string]bool{
		vcs.AdminDirName:      true,
		worktreeRootFileName:  true,
		string(def):           true,
	}
	for _, w := range worktrees {
		known[string(w.Name)] = true
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}

	var unmanaged []string
	for _, entry := range entries {
		if !known[entry.Name()] {
			unmanaged = append(unmanaged, entry.Name())
		}
	}
	return unmanaged, nil
}
