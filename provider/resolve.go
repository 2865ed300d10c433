package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utilitywarehouse/git-workspace/config"
	"github.com/utilitywarehouse/git-workspace/repo"
)

// Filters selects which provider sources to query, mirroring
// config.FiltersConfig without depending on the config package's
// YAML/TOML tags.
type Filters struct {
	Users  []string
	Groups []string
	Owner  bool
	Access bool
}

// projectKey is the dedup identity for a resolved project: (name,
// namespace).
type projectKey struct{ name, namespace string }

// Resolve composes owner, accessible, per-user and per-group sources in
// that fixed order, keeping only the first occurrence of each (name,
// namespace) pair, then groups by namespace.
func Resolve(ctx context.Context, r Resolver, filters Filters, log *slog.Logger) (map[string][]Project, error) {
	if log == nil {
		log = slog.Default()
	}

	if !filters.Owner && !filters.Access && len(filters.Users) == 0 && len(filters.Groups) == 0 {
		log.Warn("provider filters select nothing; result is empty")
		return map[string][]Project{}, nil
	}

	seen := make(map[projectKey]bool)
	byNamespace := make(map[string][]Project)

	add := func(projects []Project) {
		for _, p := range projects {
			k := projectKey{name: p.Name, namespace: p.Namespace}
			if seen[k] {
				continue
			}
			seen[k] = true
			byNamespace[p.Namespace] = append(byNamespace[p.Namespace], p)
		}
	}

	if filters.Owner {
		projects, err := r.GetOwnProjects(ctx)
		if err != nil {
			return nil, err
		}
		add(projects)
	}

	if filters.Access {
		projects, err := r.GetAccessibleProjects(ctx)
		if err != nil {
			return nil, err
		}
		add(projects)
	}

	for _, user := range filters.Users {
		projects, err := r.GetUserProjects(ctx, user)
		if err != nil {
			return nil, err
		}
		add(projects)
	}

	for _, group := range filters.Groups {
		projects, err := r.GetGroupProjects(ctx, group)
		if err != nil {
			return nil, err
		}
		add(projects)
	}

	return byNamespace, nil
}

// ToRepos maps a namespace-grouped resolution result into repo.Repo
// values, the namespace stripped from each project's name, with exactly
// one remote attached per project.
func ToRepos(byNamespace map[string][]Project, spec config.ProviderSpecConfig) []repo.Repo {
	remoteName := spec.RemoteName
	if remoteName == "" {
		remoteName = "origin"
	}
	setup := repo.NoWorktree
	if spec.Worktree {
		setup = repo.Worktree
	}

	var repos []repo.Repo
	for namespace, projects := range byNamespace {
		for _, p := range projects {
			useSSH := spec.ForceSSH || p.Private
			url := p.HTTPURLToRepo
			if useSSH {
				url = p.SSHURLToRepo
			}

			remote, err := repo.NewRemote(repo.RemoteName(remoteName), repo.RemoteUrl(url))
			if err != nil {
				continue
			}

			repos = append(repos, repo.Repo{
				Name:          repo.RepoName(p.Name),
				Namespace:     repo.RepoNamespace(namespace),
				WorktreeSetup: setup,
				Remotes:       []repo.Remote{remote},
			})
		}
	}
	return repos
}

// FiltersFromConfig adapts config.FiltersConfig to the provider-local
// Filters shape.
func FiltersFromConfig(f config.FiltersConfig) Filters {
	return Filters{Users: f.Users, Groups: f.Groups, Owner: f.Owner, Access: f.Access}
}

// KindFromString maps the config "provider" field to a Kind.
func KindFromString(s string) (Kind, error) {
	switch s {
	case "github":
		return GitHub, nil
	case "gitlab":
		return GitLab, nil
	default:
		return 0, fmt.Errorf("unknown provider %q", s)
	}
}
