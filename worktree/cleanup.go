package worktree

import (
	"context"
	"errors"
	"fmt"

	"github.com/utilitywarehouse/git-workspace/repo"
)

// CleanupNotification is sent on notify after each worktree is
// successfully deleted.
type CleanupNotification struct {
	Name repo.WorktreeName
}

// Cleanup attempts Remove(force=false) on every worktree except the
// default branch and any persistent_branches from config. Skipped
// worktrees are returned as warnings; deletions are reported one at a time
// on notify, which the caller must keep open until Cleanup returns.
func (e *Engine) Cleanup(ctx context.Context, notify chan<- CleanupNotification) ([]string, error) {
	def, err := e.handle.DefaultBranch(ctx)
	if err != nil {
		return nil, err
	}

	worktrees, err := e.handle.GetWorktrees(ctx)
	if err != nil {
		return nil, err
	}

	var warnings []string
	for _, w := range worktrees {
		if string(w.Name) == string(def) || e.root.IsPersistent(string(w.Name)) {
			continue
		}

		if err := e.Remove(ctx, w.Name, false); err != nil {
			if errors.Is(err, ErrChanges) {
				warnings = append(warnings, fmt.Sprintf("%s: uncommitted changes, skipped", w.Name))
				continue
			}
			warnings = append(warnings, fmt.Sprintf("%s: %v", w.Name, err))
			continue
		}

		if notify != nil {
			notify <- CleanupNotification{Name: w.Name}
		}
	}

	return warnings, nil
}
