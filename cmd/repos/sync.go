package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utilitywarehouse/git-workspace/auth"
	"github.com/utilitywarehouse/git-workspace/config"
	"github.com/utilitywarehouse/git-workspace/provider"
	"github.com/utilitywarehouse/git-workspace/repo"
	"github.com/utilitywarehouse/git-workspace/sync"
)

func newSyncCmd() *cobra.Command {
	var configPath string
	var initWorktree bool
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile on-disk repositories against the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			trees, err := resolveTrees(ctx, configPath)
			if err != nil {
				return err
			}

			engine := sync.New(logger, initWorktree)
			result := engine.Sync(ctx, trees)

			if metricsFile != "" {
				m := sync.NewMetrics("git_workspace")
				m.Observe(result)
				if err := m.WriteTextfile(metricsFile); err != nil {
					logger.Warn("writing metrics file", "path", metricsFile, "error", err)
				}
			}

			for _, rr := range result.Repos {
				if rr.Err != nil {
					logger.Error("sync failed", "repo", rr.Fullname, "error", rr.Err)
					continue
				}
				logger.Info("synced", "repo", rr.Fullname, "action", rr.Action.String())
				for _, w := range rr.Warnings {
					logger.Warn(w, "repo", rr.Fullname)
				}
			}
			for _, u := range result.Unmanaged {
				logger.Warn("unmanaged path", "path", u)
			}

			if !result.OK() {
				return fmt.Errorf("sync completed with errors")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the config file")
	cmd.Flags().BoolVar(&initWorktree, "init-worktree", false, "add a default-branch worktree for freshly cloned worktree-layout repos")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write a Prometheus textfile-collector snapshot of this run to this path")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

// resolveTrees loads configPath and, for a provider spec, resolves it
// against the live provider API into a single tree.
func resolveTrees(ctx context.Context, configPath string) ([]repo.Tree, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cfg.Trees != nil {
		return cfg.Trees.ToTrees()
	}

	spec := *cfg.Provider
	token, err := auth.TokenFromCommand(ctx, spec.TokenCommand)
	if err != nil {
		return nil, err
	}

	kind, err := provider.KindFromString(spec.Provider)
	if err != nil {
		return nil, err
	}

	resolver := provider.New(kind, spec.APIUrl, token)
	byNamespace, err := provider.Resolve(ctx, resolver, provider.FiltersFromConfig(spec.Filters), logger)
	if err != nil {
		return nil, err
	}

	repos := provider.ToRepos(byNamespace, spec)
	return []repo.Tree{{Root: spec.Root, Repos: repos}}, nil
}
