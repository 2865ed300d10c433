package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/utilitywarehouse/git-workspace/config"
	"github.com/utilitywarehouse/git-workspace/internal/vcs"
	"github.com/utilitywarehouse/git-workspace/repo"
	"github.com/utilitywarehouse/git-workspace/status"
	"github.com/utilitywarehouse/git-workspace/worktree"
)

func newWorktreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worktree",
		Short: "Manage the linked worktrees of a single worktree-layout repository",
	}
	cmd.PersistentFlags().String("repo", "", "repository root (defaults to the current directory)")

	cmd.AddCommand(newWorktreeAddCmd())
	cmd.AddCommand(newWorktreeDeleteCmd())
	cmd.AddCommand(newWorktreeStatusCmd())
	cmd.AddCommand(newWorktreeConvertCmd())
	cmd.AddCommand(newWorktreeCleanCmd())
	cmd.AddCommand(newWorktreeFetchCmd())
	cmd.AddCommand(newWorktreePullCmd())
	cmd.AddCommand(newWorktreeRebaseCmd())
	return cmd
}

// openEngine opens the worktree-layout repository rooted at --repo (or the
// current directory) and builds its worktree engine.
func openEngine(cmd *cobra.Command) (*worktree.Engine, error) {
	rootDir, _ := cmd.Flags().GetString("repo")
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		rootDir = wd
	}

	h, err := vcs.Open(rootDir, repo.Worktree, vcs.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	root, err := config.LoadWorktreeRoot(rootDir)
	if err != nil {
		return nil, err
	}

	r := repo.Repo{Name: repo.RepoName(filepath.Base(rootDir)), WorktreeSetup: repo.Worktree}
	return worktree.New(h, r, root, logger), nil
}

func newWorktreeAddCmd() *cobra.Command {
	var trackRemote string
	var noTrack bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new linked worktree and its backing local branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := repo.NewWorktreeName(args[0])
			if err != nil {
				return err
			}

			eng, err := openEngine(cmd)
			if err != nil {
				return err
			}

			tracking := worktree.AutomaticTracking()
			switch {
			case noTrack:
				tracking = worktree.DisabledTracking()
			case trackRemote != "":
				remote, branch, err := splitRemoteBranch(trackRemote)
				if err != nil {
					return err
				}
				tracking = worktree.ExplicitTracking(repo.RemoteName(remote), repo.BranchName(branch))
			}

			result, err := eng.Add(context.Background(), name, tracking)
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				logger.Warn(w)
			}
			if result.UpstreamSet {
				fmt.Printf("worktree %s tracking %s/%s\n", name, result.Upstream, result.UpstreamBranch)
			} else {
				fmt.Printf("worktree %s created\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&trackRemote, "track", "", "force upstream to remote/branch")
	cmd.Flags().BoolVar(&noTrack, "no-track", false, "never attach an upstream to the new branch")
	return cmd
}

func splitRemoteBranch(s string) (remote, branch string, err error) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("--track expects remote/branch, got %q", s)
}

func newWorktreeDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a linked worktree and its backing local branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := repo.NewWorktreeName(args[0])
			if err != nil {
				return err
			}
			eng, err := openEngine(cmd)
			if err != nil {
				return err
			}
			return eng.Remove(context.Background(), name, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip the branch-match, clean-status, merged and in-sync checks")
	return cmd
}

func newWorktreeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of every linked worktree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rootDir, _ := cmd.Flags().GetString("repo")
			if rootDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				rootDir = wd
			}

			ctx := context.Background()
			h, err := vcs.Open(rootDir, repo.Worktree, vcs.WithLogger(logger))
			if err != nil {
				return err
			}

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
		},
	}
}

func newWorktreeConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Convert a plain checkout in place into a worktree-layout repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rootDir, _ := cmd.Flags().GetString("repo")
			if rootDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				rootDir = wd
			}
			_, err := vcs.ConvertToWorktree(context.Background(), rootDir, vcs.WithLogger(logger))
			return err
		},
	}
}

func newWorktreeCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove every worktree that is safe to remove, except the default and persistent branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(cmd)
			if err != nil {
				return err
			}

			notify := make(chan worktree.CleanupNotification)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for n := range notify {
					fmt.Printf("removed %s\n", n.Name)
				}
			}()

			warnings, err := eng.Cleanup(context.Background(), notify)
			close(notify)
			<-done
			for _, w := range warnings {
				logger.Warn(w)
			}
			return err
		},
	}
}

func newWorktreeFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch every configured remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rootDir, _ := cmd.Flags().GetString("repo")
			if rootDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				rootDir = wd
			}
			h, err := vcs.Open(rootDir, repo.Worktree, vcs.WithLogger(logger))
			if err != nil {
				return err
			}
			remotes, err := h.Remotes(context.Background())
			if err != nil {
				return err
			}
			for _, r := range remotes {
				if err := h.Fetch(context.Background(), r.Name); err != nil {
					return fmt.Errorf("fetch %s: %w", r.Name, err)
				}
				logger.Info("fetched", "remote", r.Name)
			}
			return nil
		},
	}
}

func newWorktreePullCmd() *cobra.Command {
	var rebase, stash bool

	cmd := &cobra.Command{
		Use:   "pull <name>",
		Short: "Fast-forward (or rebase) a worktree's branch onto its upstream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := repo.NewWorktreeName(args[0])
			if err != nil {
				return err
			}
			eng, err := openEngine(cmd)
			if err != nil {
				return err
			}
			warning, err := eng.ForwardBranch(context.Background(), name, rebase, stash)
			if err != nil {
				return err
			}
			if warning != "" {
				logger.Warn(warning, "worktree", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rebase, "rebase", false, "rebase onto upstream instead of fast-forwarding")
	cmd.Flags().BoolVar(&stash, "stash", false, "stash and restore local changes around the operation")
	return cmd
}

func newWorktreeRebaseCmd() *cobra.Command {
	var stash, pull bool

	cmd := &cobra.Command{
		Use:   "rebase <name>",
		Short: "Rebase a worktree's branch onto the default or first persistent branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := repo.NewWorktreeName(args[0])
			if err != nil {
				return err
			}
			eng, err := openEngine(cmd)
			if err != nil {
				return err
			}

			if pull {
				h, err := vcs.Open(eng.RootDir(), repo.Worktree, vcs.WithLogger(logger))
				if err != nil {
					return err
				}
				remotes, err := h.Remotes(context.Background())
				if err != nil {
					return err
				}
				for _, r := range remotes {
					if err := h.Fetch(context.Background(), r.Name); err != nil {
						return fmt.Errorf("fetch %s: %w", r.Name, err)
					}
				}
			}

			warning, err := eng.RebaseOntoDefault(context.Background(), name, stash)
			if err != nil {
				return err
			}
			if warning != "" {
				logger.Warn(warning, "worktree", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stash, "stash", false, "stash and restore local changes around the operation")
	cmd.Flags().BoolVar(&pull, "pull", false, "fetch every remote before rebasing")
	return cmd
}
