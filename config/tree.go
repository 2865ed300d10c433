package config

// TreeListConfig is the tree-list shape of Config.
type TreeListConfig struct {
	Trees []TreeConfig `yaml:"trees" toml:"trees"`
}

// TreeConfig is one configured root and the repos expected beneath it.
type TreeConfig struct {
	Root  string       `yaml:"root" toml:"root"`
	Repos []RepoConfig `yaml:"repos" toml:"repos"`
}

// RepoConfig is one repo entry under a tree.
type RepoConfig struct {
	Name          string         `yaml:"name" toml:"name"`
	WorktreeSetup bool           `yaml:"worktree_setup" toml:"worktree_setup"`
	Remotes       []RemoteConfig `yaml:"remotes" toml:"remotes"`
}

// RemoteConfig is one remote entry under a repo. Type is accepted for
// round-tripping but is not authoritative: the loader re-derives
// repo.RemoteType from URL by classification, so a Type value that
// disagrees with the URL is silently superseded rather than rejected.
type RemoteConfig struct {
	Name string `yaml:"name" toml:"name"`
	URL  string `yaml:"url" toml:"url"`
	Type string `yaml:"type" toml:"type"`
}

// IsTreeList reports whether raw looks like a tree-list document (has a
// "trees" key), used to discriminate the two Config shapes structurally.
func IsTreeList(raw map[string]any) bool {
	_, ok := raw["trees"]
	return ok
}
