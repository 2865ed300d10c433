package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/utilitywarehouse/git-workspace/config"
	"github.com/utilitywarehouse/git-workspace/internal/pathutil"
	"github.com/utilitywarehouse/git-workspace/internal/vcs"
	"github.com/utilitywarehouse/git-workspace/repo"
	"github.com/utilitywarehouse/git-workspace/worktree"
)

// Engine reconciles a configured fleet of repositories against on-disk
// state.
type Engine struct {
	log          *slog.Logger
	initWorktree bool
}

// New builds a sync Engine. initWorktree controls whether a freshly cloned
// worktree-layout repo gets a default-branch worktree added immediately.
func New(log *slog.Logger, initWorktree bool) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log, initWorktree: initWorktree}
}

// Sync processes every repo in every tree, then performs unmanaged-path
// discovery across all tree roots.
func (e *Engine) Sync(ctx context.Context, trees []repo.Tree) Result {
	var result Result
	managed := make(map[string]bool)

	for _, tree := range trees {
		root := pathutil.Expand(tree.Root)
		for _, r := range tree.Repos {
			path := filepath.Join(root, r.Fullname())
			managed[filepath.Clean(path)] = true

			rr := e.syncRepo(ctx, path, r)
			result.Repos = append(result.Repos, rr)
		}
	}

	for _, tree := range trees {
		root := pathutil.Expand(tree.Root)
		found, err := findUnmanaged(root, managed)
		if err != nil {
			e.log.Warn("unmanaged discovery failed", "root", root, "error", err)
			continue
		}
		result.Unmanaged = append(result.Unmanaged, found...)
	}

	return result
}

func (e *Engine) syncRepo(ctx context.Context, path string, r repo.Repo) RepoResult {
	rr := RepoResult{Fullname: r.Fullname(), Path: path}

	nonEmpty, err := dirNonEmpty(path)
	if err != nil {
		rr.Err = err
		return rr
	}

	adminPresent := adminDirPresent(path)

	switch {
	case nonEmpty:
		if r.WorktreeSetup == repo.Worktree && !adminPresent {
			rr.Err = fmt.Errorf("%w: %s", ErrWorktreeExpected, r.Fullname())
			return rr
		}
	case len(r.Remotes) == 0:
		if _, err := vcs.Init(path, r.WorktreeSetup, vcs.WithLogger(e.log)); err != nil {
			rr.Err = err
			return rr
		}
		rr.Action = ActionCreated
	default:
		first := r.Remotes[0]
		if _, err := vcs.Clone(ctx, first, first.Name, path, r.WorktreeSetup, vcs.WithLogger(e.log)); err != nil {
			rr.Err = err
			return rr
		}
		rr.Action = ActionCloned
	}

	if r.WorktreeSetup == repo.NoWorktree && adminDirPresent(path) {
		rr.Err = fmt.Errorf("%w: %s", ErrWorktreeNotExpected, r.Fullname())
		return rr
	}

	h, err := vcs.Open(path, r.WorktreeSetup, vcs.WithLogger(e.log))
	if err != nil {
		rr.Err = err
		return rr
	}

	if rr.Action == ActionCloned && r.WorktreeSetup == repo.Worktree && e.initWorktree {
		def, err := h.DefaultBranch(ctx)
		if err == nil {
			root, rootErr := loadWorktreeRoot(path)
			if rootErr != nil {
				rr.Warnings = append(rr.Warnings, rootErr.Error())
			}
			eng := worktree.New(h, r, root, e.log)
			if _, addErr := eng.Add(ctx, repo.WorktreeName(def), worktree.AutomaticTracking()); addErr != nil {
				rr.Warnings = append(rr.Warnings, "init worktree: "+addErr.Error())
			}
		}
	}

	if err := e.reconcileRemotes(ctx, h, r); err != nil {
		rr.Err = err
		return rr
	}

	return rr
}

// reconcileRemotes applies every configured remote (add or update URL)
// before deleting any live remote absent from config.
func (e *Engine) reconcileRemotes(ctx context.Context, h *vcs.Handle, r repo.Repo) error {
	live, err := h.Remotes(ctx)
	if err != nil {
		return err
	}
	liveByName := make(map[repo.RemoteName]repo.Remote, len(live))
	for _, l := range live {
		liveByName[l.Name] = l
	}

	configured := make(map[repo.RemoteName]bool, len(r.Remotes))
	for _, rem := range r.Remotes {
		configured[rem.Name] = true
		if existing, ok := liveByName[rem.Name]; !ok {
			if err := h.NewRemote(ctx, rem.Name, rem.URL); err != nil {
				return err
			}
		} else if existing.URL != rem.URL {
			if err := h.RemoteSetURL(ctx, rem.Name, rem.URL); err != nil {
				return err
			}
		}
	}

	for _, l := range live {
		if !configured[l.Name] {
			if err := h.RemoteDelete(ctx, l.Name); err != nil {
				return err
			}
		}
	}

	return nil
}

func dirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return len(entries) > 0, nil
}

func adminDirPresent(path string) bool {
	_, err := os.Stat(filepath.Join(path, vcs.AdminDirName))
	return err == nil
}

func loadWorktreeRoot(repoPath string) (*config.WorktreeRootConfig, error) {
	return config.LoadWorktreeRoot(repoPath)
}
