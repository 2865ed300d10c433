package worktree

import "github.com/utilitywarehouse/git-workspace/repo"

// TrackingKind selects how Add's tracking step chooses an upstream for a
// newly created local branch.
type TrackingKind int

const (
	// Automatic honours the worktree-root config's default-tracking
	// setting.
	Automatic TrackingKind = iota
	// Disabled means never attach an upstream.
	Disabled
	// Explicit forces a specific remote/branch upstream, ignoring any
	// configured prefix.
	Explicit
)

// TrackingSelection is the tagged union add() accepts for its tracking
// parameter; only Remote/Branch are meaningful when Kind is Explicit.
type TrackingSelection struct {
	Kind   TrackingKind
	Remote repo.RemoteName
	Branch repo.BranchName
}

// AutomaticTracking follows the worktree-root config.
func AutomaticTracking() TrackingSelection { return TrackingSelection{Kind: Automatic} }

// DisabledTracking never attaches an upstream.
func DisabledTracking() TrackingSelection { return TrackingSelection{Kind: Disabled} }

// ExplicitTracking forces remote/branch as the upstream.
func ExplicitTracking(remote repo.RemoteName, branch repo.BranchName) TrackingSelection {
	return TrackingSelection{Kind: Explicit, Remote: remote, Branch: branch}
}
