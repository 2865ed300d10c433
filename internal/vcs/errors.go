package vcs

import (
	"errors"
	"strconv"
)

// VCS errors.
var (
	ErrRepoNotFound           = errors.New("repository not found")
	ErrBranchNotFound         = errors.New("branch not found")
	ErrNoDefaultBranch        = errors.New("unable to determine default branch")
	ErrNoBranchCheckedOut     = errors.New("no branch checked out (detached HEAD)")
	ErrRefspecRenameFailed    = errors.New("remote rename could not rename all refspecs")
	ErrGitConfigSetError      = errors.New("unable to set git config")
	ErrInvalidRemoteHead      = errors.New("invalid remote HEAD pointer")
	ErrRemoteHeadNoSymbolic   = errors.New("remote HEAD is not a symbolic ref")
	ErrRemoteNotFound         = errors.New("remote not found")
	ErrNonPushableRemote      = errors.New("remote is not pushable")
	ErrChanges                = errors.New("worktree has pending changes")
	ErrIgnored                = errors.New("worktree has ignored files")
	ErrBareRepoHasNoWorktree  = errors.New("bare worktree-layout root has no head/changes/submodules")
	ErrRenameError            = errors.New("could not rename .git to admin directory")
	ErrRemoveError            = errors.New("could not remove top-level entry")
	ErrReadDirectoryError     = errors.New("could not read directory")
)

// NameNotUTF8Error reports an identifier the underlying library handed back
// that is not valid UTF-8. Kind names the identifier kind ("branch",
// "remote", "worktree", "submodule"); the operation that encountered it
// fails.
type NameNotUTF8Error struct {
	Kind string
	Name string
}

func (e *NameNotUTF8Error) Error() string {
	return e.Kind + " name is not valid utf-8: " + strconv.Quote(e.Name)
}

// PushFailedError reports a failed push to a remote branch.
type PushFailedError struct {
	Local   string
	Remote  string
	URL     string
	Message string
}

func (e *PushFailedError) Error() string {
	return "push " + e.Local + " to " + e.Remote + " (" + e.URL + ") failed: " + e.Message
}
