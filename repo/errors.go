package repo

import "errors"

// Remote URL classification errors.
var (
	ErrUnsupportedHTTPRemote = errors.New("http:// remote urls are not supported, use https://")
	ErrUnsupportedGitRemote  = errors.New("git:// remote urls are not supported")
	ErrUnimplementedProtocol = errors.New("remote url protocol is not implemented")
	ErrInvalidWorktreeName   = errors.New("invalid worktree name")
	ErrDuplicateRemoteName   = errors.New("duplicate remote name in repo")
)
