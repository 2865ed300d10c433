// Package sync implements the sync engine: reconciling a configured
// fleet of repositories against on-disk state, and discovering paths the
// configuration does not account for.
package sync

import "errors"

var (
	// ErrWorktreeExpected is returned when a non-empty repo directory is
	// configured for worktree layout but has no admin directory.
	ErrWorktreeExpected = errors.New("worktree layout expected but repository is not in worktree layout")
	// ErrWorktreeNotExpected is returned when a repo configured as a
	// plain checkout opens successfully as a worktree-layout repository.
	ErrWorktreeNotExpected = errors.New("repository is in worktree layout but was not configured for it")
)
