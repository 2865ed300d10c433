// Package worktree implements the worktree engine: creating and removing
// linked worktrees against a worktree-layout repository, cleaning up
// stale ones, forwarding or rebasing a checked-out branch, delegating to
// the conversion state machine, and finding directories the engine does
// not manage.
package worktree

import "errors"

// Worktree remove errors.
var (
	ErrDoesNotExist        = errors.New("worktree does not exist")
	ErrBranchNameMismatch  = errors.New("checked-out branch does not match worktree name")
	ErrChanges             = errors.New("worktree has pending changes")
	ErrNotMerged           = errors.New("branch is not merged into the default or any persistent branch")
	ErrNotInSyncWithRemote = errors.New("branch is not in sync with its upstream")
)

// Add errors.
var (
	ErrWorktreeAlreadyExists = errors.New("worktree already exists")
	ErrRemoteNotFound        = errors.New("remote not found")
	ErrRemoteNotPushable     = errors.New("remote is not pushable")
	ErrInvalidWorktreeName   = errors.New("invalid worktree name")
)
