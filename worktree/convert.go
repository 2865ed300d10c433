package worktree

import (
	"context"

	"github.com/utilitywarehouse/git-workspace/internal/vcs"
)

// Convert delegates to the conversion state machine, replacing the
// engine's handle with the freshly reopened bare one on success.
func (e *Engine) Convert(ctx context.Context) error {
	h, err := vcs.ConvertToWorktree(ctx, e.rootDir)
	if err != nil {
		return err
	}
	e.handle = h
	return nil
}
