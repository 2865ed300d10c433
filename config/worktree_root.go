package config

// WorktreeRootFileName is the contractual name of the optional config file
// at the top of a worktree-layout repository.
const WorktreeRootFileName = ".git-workspace.yaml"

// WorktreeRootConfig is the optional per-repository configuration read from
// WorktreeRootFileName.
type WorktreeRootConfig struct {
	PersistentBranches []string     `yaml:"persistent_branches" toml:"persistent_branches"`
	Track              *TrackConfig `yaml:"track" toml:"track"`
}

// TrackConfig controls automatic upstream tracking for newly created
// branches.
type TrackConfig struct {
	Default             bool   `yaml:"default" toml:"default"`
	DefaultRemote       string `yaml:"default_remote" toml:"default_remote"`
	DefaultRemotePrefix string `yaml:"default_remote_prefix" toml:"default_remote_prefix"`
}

// TrackingEnabled reports whether automatic tracking is configured at all.
func (c *WorktreeRootConfig) TrackingEnabled() bool {
	return c != nil && c.Track != nil && c.Track.Default
}

// DefaultRemote returns the configured default remote, or "" if unset.
func (c *WorktreeRootConfig) DefaultRemote() string {
	if c == nil || c.Track == nil {
		return ""
	}
	return c.Track.DefaultRemote
}

// DefaultRemotePrefix returns the configured branch-name prefix used when
// looking up a remote branch under the default (or sole) remote: the
// prefixed name is tried before the plain name.
func (c *WorktreeRootConfig) DefaultRemotePrefix() string {
	if c == nil || c.Track == nil {
		return ""
	}
	return c.Track.DefaultRemotePrefix
}

// IsPersistent reports whether branch is listed as a persistent branch.
func (c *WorktreeRootConfig) IsPersistent(branch string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.PersistentBranches {
		if p == branch {
			return true
		}
	}
	return false
}
