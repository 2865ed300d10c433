package config

// ProviderSpecConfig is the provider-spec shape of Config: it resolves at
// run time to a tree list by querying a hosted VCS provider.
type ProviderSpecConfig struct {
	Provider     string        `yaml:"provider" toml:"provider"`
	TokenCommand string        `yaml:"token_command" toml:"token_command"`
	Root         string        `yaml:"root" toml:"root"`
	Filters      FiltersConfig `yaml:"filters" toml:"filters"`
	ForceSSH     bool          `yaml:"force_ssh" toml:"force_ssh"`
	APIUrl       string        `yaml:"api_url" toml:"api_url"`
	Worktree     bool          `yaml:"worktree" toml:"worktree"`
	RemoteName   string        `yaml:"remote_name" toml:"remote_name"`
}

// FiltersConfig selects which of the provider's projects to resolve.
type FiltersConfig struct {
	Users  []string `yaml:"users" toml:"users"`
	Groups []string `yaml:"groups" toml:"groups"`
	Owner  bool     `yaml:"owner" toml:"owner"`
	Access bool     `yaml:"access" toml:"access"`
}

// Empty reports whether no filter selects anything, in which case the
// resolver must warn the caller and return an empty result.
func (f FiltersConfig) Empty() bool {
	return len(f.Users) == 0 && len(f.Groups) == 0 && !f.Owner && !f.Access
}

// IsProviderSpec reports whether raw looks like a provider-spec document
// (has a "provider" key).
func IsProviderSpec(raw map[string]any) bool {
	_, ok := raw["provider"]
	return ok
}
