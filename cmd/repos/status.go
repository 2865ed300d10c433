package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/utilitywarehouse/git-workspace/internal/pathutil"
	"github.com/utilitywarehouse/git-workspace/internal/vcs"
	"github.com/utilitywarehouse/git-workspace/repo"
	"github.com/utilitywarehouse/git-workspace/status"
)

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show the status of one repository, or every repository in the config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if len(args) == 1 {
				return printSingleStatus(ctx, args[0])
			}

			trees, err := resolveTrees(ctx, configPath)
			if err != nil {
				return err
			}
			for _, tree := range trees {
				root := pathutil.Expand(tree.Root)
				for _, r := range tree.Repos {
					path := filepath.Join(root, r.Fullname())
					if err := printSingleStatus(ctx, path); err != nil {
						logger.Error("status failed", "repo", r.Fullname(), "error", err)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the config file")
	return cmd
}

func printSingleStatus(ctx context.Context, path string) error {
	setup := repo.NoWorktree
	if _, err := os.Stat(path + "/" + vcs.AdminDirName); err == nil {
		setup = repo.Worktree
	}

	h, err := vcs.Open(path, setup, vcs.WithLogger(logger))
	if err != nil {
		return err
	}

	if setup == repo.Worktree {
		worktrees, err := h.GetWorktrees(ctx)
		if err != nil {
			return err
		}
		statuses := make(map[repo.WorktreeName]repo.RepoStatus, len(worktrees))
		for _, w := range worktrees {
			st, err := h.Status(ctx, w.Path)
			if err != nil {
				return err
			}
			statuses[w.Name] = st
		}
		fmt.Println(status.Worktrees(status.RowsFromInfo(worktrees, statuses)))
		return nil
	}

	st, err := h.Status(ctx, path)
	if err != nil {
		return err
	}
	fmt.Println(status.Single(path, st))
	return nil
}
