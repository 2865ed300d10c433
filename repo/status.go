package repo

// Operation mirrors the host VCS library's mid-operation state (rebase,
// merge, cherry-pick, ... in progress) surfaced verbatim by RepoStatus.
type Operation int

const (
	OperationNone Operation = iota
	OperationRebase
	OperationMerge
	OperationCherryPick
	OperationRevert
	OperationBisect
)

// Changes counts pending local modifications, classified new/modified/
// deleted in that priority order; renames and type-changes count as
// modified.
type Changes struct {
	New      int
	Modified int
	Deleted  int
}

// Empty reports whether there are no pending changes at all.
func (c Changes) Empty() bool {
	return c.New == 0 && c.Modified == 0 && c.Deleted == 0
}

// SubmoduleState is a tagged variant, not a bitfield.
type SubmoduleState int

const (
	SubmoduleClean SubmoduleState = iota
	SubmoduleUninitialized
	SubmoduleChanged
	SubmoduleOutOfDate
)

// SubmoduleStatus names one submodule's state.
type SubmoduleStatus struct {
	Name  SubmoduleName
	State SubmoduleState
}

// TrackingKind is the shape of a local branch's relationship to its
// upstream: up to date, ahead, behind, or diverged.
type TrackingKind int

const (
	UpToDate TrackingKind = iota
	Ahead
	Behind
	Diverged
)

// RemoteTrackingStatus carries the ahead/behind counts alongside the kind;
// only the fields relevant to Kind are meaningful (Ahead: AheadCount only,
// Behind: BehindCount only, Diverged: both).
type RemoteTrackingStatus struct {
	Kind        TrackingKind
	AheadCount  int
	BehindCount int
}

// BranchStatus pairs a local branch with its optional upstream tracking
// state.
type BranchStatus struct {
	Local    BranchName
	Upstream *RemoteName // nil if no upstream
	Tracking *RemoteTrackingStatus
}

// RepoStatus is the full status snapshot the status reporter renders.
// For a bare worktree-layout root,
// Head, Changes and Submodules are nil/zero; requesting Changes on one is
// an error (enforced by internal/vcs, not this type).
type RepoStatus struct {
	Operation  Operation
	Empty      bool
	Remotes    []Remote
	Head       *BranchName
	Changes    *Changes
	Worktrees  int
	Submodules []SubmoduleStatus
	Branches   []BranchStatus
}
