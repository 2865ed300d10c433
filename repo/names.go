// Package repo holds the fleet's data model: the newtype identifiers, the
// Repo/Remote/Tree shapes read from and written to config, and the
// RepoStatus shape the status reporter renders.
package repo

import (
	"fmt"
	"strings"
)

// Newtype identifiers. Distinct types prevent mixing a BranchName with a
// RemoteName at a call site.
type (
	RepoName      string
	RepoNamespace string
	BranchName    string
	RemoteName    string
	RemoteUrl     string
	WorktreeName  string
	SubmoduleName string
)

// NewWorktreeName validates name: no leading/trailing "/", no "//", no
// whitespace.
func NewWorktreeName(name string) (WorktreeName, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidWorktreeName)
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return "", fmt.Errorf("%w: %q has a leading or trailing slash", ErrInvalidWorktreeName, name)
	}
	if strings.Contains(name, "//") {
		return "", fmt.Errorf("%w: %q contains a repeated slash", ErrInvalidWorktreeName, name)
	}
	for _, r := range name {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			return "", fmt.Errorf("%w: %q contains whitespace", ErrInvalidWorktreeName, name)
		}
	}
	return WorktreeName(name), nil
}

func (w WorktreeName) String() string { return string(w) }
