package repo

import "fmt"

// WorktreeSetup selects whether a repo is stored in worktree layout (a bare
// repository under .git-main-working-tree/ with sibling branch checkouts)
// or as an ordinary checkout.
type WorktreeSetup int

const (
	NoWorktree WorktreeSetup = iota
	Worktree
)

// Repo is one configured repository: its name, optional namespace, worktree
// layout choice and ordered remotes.
type Repo struct {
	Name          RepoName
	Namespace     RepoNamespace
	WorktreeSetup WorktreeSetup
	Remotes       []Remote
}

// Fullname returns "namespace/name", or just "name" when there is no
// namespace.
func (r Repo) Fullname() string {
	if r.Namespace == "" {
		return string(r.Name)
	}
	return string(r.Namespace) + "/" + string(r.Name)
}

// Validate enforces that remote names within a repo are unique.
func (r Repo) Validate() error {
	seen := make(map[RemoteName]bool, len(r.Remotes))
	for _, rem := range r.Remotes {
		if seen[rem.Name] {
			return fmt.Errorf("%w: %q in repo %q", ErrDuplicateRemoteName, rem.Name, r.Fullname())
		}
		seen[rem.Name] = true
	}
	return nil
}

// FindRemote returns the named remote and true, or the zero Remote and
// false if no remote by that name is configured.
func (r Repo) FindRemote(name RemoteName) (Remote, bool) {
	for _, rem := range r.Remotes {
		if rem.Name == name {
			return rem, true
		}
	}
	return Remote{}, false
}

// Tree is a configured root directory and the repos expected beneath it.
// Root may contain "~" or "$HOME"; it is expanded on use by
// internal/pathutil, never on read, so round-tripped configs keep their
// tilde form.
type Tree struct {
	Root  string
	Repos []Repo
}
