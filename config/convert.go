package config

import (
	"github.com/utilitywarehouse/git-workspace/internal/pathutil"
	"github.com/utilitywarehouse/git-workspace/repo"
)

// ToTrees converts a tree-list config into the repo.Tree model the sync
// engine and worktree engine operate on, splitting each RepoConfig's
// "namespace/name" into Repo.Namespace/Repo.Name.
func (tc *TreeListConfig) ToTrees() ([]repo.Tree, error) {
	trees := make([]repo.Tree, 0, len(tc.Trees))
	for _, t := range tc.Trees {
		repos := make([]repo.Repo, 0, len(t.Repos))
		for _, rc := range t.Repos {
			r, err := rc.toRepo()
			if err != nil {
				return nil, err
			}
			repos = append(repos, r)
		}
		trees = append(trees, repo.Tree{Root: t.Root, Repos: repos})
	}
	return trees, nil
}

func (rc RepoConfig) toRepo() (repo.Repo, error) {
	namespace, name := splitNamespace(rc.Name)

	setup := repo.NoWorktree
	if rc.WorktreeSetup {
		setup = repo.Worktree
	}

	r := repo.Repo{
		Name:          repo.RepoName(name),
		Namespace:     repo.RepoNamespace(namespace),
		WorktreeSetup: setup,
	}

	for _, rem := range rc.Remotes {
		remote, err := repo.NewRemote(repo.RemoteName(rem.Name), repo.RemoteUrl(rem.URL))
		if err != nil {
			return repo.Repo{}, err
		}
		r.Remotes = append(r.Remotes, remote)
	}

	if err := r.Validate(); err != nil {
		return repo.Repo{}, err
	}

	return r, nil
}

// splitNamespace splits "group/sub/name" into ("group/sub", "name"); a
// name with no "/" has an empty namespace.
func splitNamespace(full string) (namespace, name string) {
	idx := -1
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", full
	}
	return full[:idx], full[idx+1:]
}

// FromRepos builds a TreeListConfig from resolved repo.Tree values, the
// inverse of ToTrees(), used to persist a provider-resolved fleet back to a
// plain tree list fed into the sync engine. Each root is collapsed back to
// "~" form when it falls under the current user's home directory, so the
// emitted config stays portable rather than baking in the resolving
// machine's absolute home path.
func FromRepos(trees []repo.Tree) *TreeListConfig {
	tc := &TreeListConfig{}
	for _, t := range trees {
		tree := TreeConfig{Root: pathutil.Collapse(t.Root)}
		for _, r := range t.Repos {
			rc := RepoConfig{
				Name:          r.Fullname(),
				WorktreeSetup: r.WorktreeSetup == repo.Worktree,
			}
			for _, rem := range r.Remotes {
				rc.Remotes = append(rc.Remotes, RemoteConfig{
					Name: string(rem.Name),
					URL:  string(rem.URL),
					Type: rem.Type.String(),
				})
			}
			tree.Repos = append(tree.Repos, rc)
		}
		tc.Trees = append(tc.Trees, tree)
	}
	return tc
}
