// Package vcs is a thin, typed wrapper over go-git, exposing exactly the
// operations the worktree engine and sync engine need. Everything go-git
// can express goes through its Repository/Worktree/Reference API; the few
// operations it has no API for at all (linked worktree administration,
// stash, rebase) shell out to the git binary.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/utilitywarehouse/git-workspace/internal/pathutil"
	"github.com/utilitywarehouse/git-workspace/repo"
)

// AdminDirName is the name of the bare administrative directory a
// worktree-layout repository stores its object database under.
const AdminDirName = ".git-main-working-tree"

// Handle is the open handle to one repository: a plain checkout, or the
// bare admin directory of a worktree-layout repository.
type Handle struct {
	// gitDir is the path go-git / the git binary operate on: path itself
	// for a plain repo, path/AdminDirName for a worktree-layout repo.
	gitDir        string
	rootDir       string
	worktreeSetup repo.WorktreeSetup
	gitRepo       *git.Repository
	gitExec       string
	log           *slog.Logger
}

// Option configures a Handle constructed by Open/Init/Clone.
type Option func(*Handle)

// WithLogger sets the logger used for trace-level git invocations.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handle) { h.log = l }
}

func newHandle(rootDir string, setup repo.WorktreeSetup, opts []Option) *Handle {
	h := &Handle{
		rootDir:       rootDir,
		worktreeSetup: setup,
		gitExec:       "git",
		log:           slog.Default(),
	}
	if setup == repo.Worktree {
		h.gitDir = filepath.Join(rootDir, AdminDirName)
	} else {
		h.gitDir = rootDir
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// billyStorer builds the go-git storage backend for gitDir on top of
// go-billy: an OS-rooted billy.Filesystem for the object database, plus
// (for a non-bare repository) a second one rooted at the working
// directory. go-git has no PlainOpen/PlainInit equivalent that accepts a
// caller-supplied filesystem, so the two are composed by hand here.
func billyStorer(gitDir string, bare bool) (*filesystem.Storage, billy.Filesystem) {
	if bare {
		dot := osfs.New(gitDir)
		return filesystem.NewStorage(dot, cache.NewObjectLRUDefault()), nil
	}
	dot := osfs.New(filepath.Join(gitDir, ".git"))
	worktree := osfs.New(gitDir)
	return filesystem.NewStorage(dot, cache.NewObjectLRUDefault()), worktree
}

// Open opens an existing repository at path. In worktree layout it opens
// path/AdminDirName as a bare repository; otherwise it opens path directly.
// A not-found result from go-git becomes ErrRepoNotFound.
func Open(path string, setup repo.WorktreeSetup, opts ...Option) (*Handle, error) {
	h := newHandle(path, setup, opts)

	bare := setup == repo.Worktree
	dotGit := h.gitDir
	if !bare {
		dotGit = filepath.Join(h.gitDir, ".git")
	}
	if _, err := os.Stat(dotGit); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, path)
	}

	storer, worktree := billyStorer(h.gitDir, bare)
	gr, err := git.Open(storer, worktree)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, path)
		}
		return nil, err
	}
	h.gitRepo = gr
	return h, nil
}

// Init creates a new repository at path: bare under AdminDirName for
// worktree layout, a normal repository otherwise; the inverse of Open.
// For worktree layout it additionally sets push.default=upstream.
func Init(path string, setup repo.WorktreeSetup, opts ...Option) (*Handle, error) {
	h := newHandle(path, setup, opts)
	bare := setup == repo.Worktree

	if bare {
		if err := os.MkdirAll(h.gitDir, 0o755); err != nil {
			return nil, err
		}
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, err
		}
	}

	storer, worktree := billyStorer(h.gitDir, bare)
	gr, err := git.Init(storer, worktree)
	if err != nil {
		return nil, err
	}
	h.gitRepo = gr

	if bare {
		if err := h.setConfigOption("push", "default", "upstream"); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// openCheckout opens the checkout at dir with go-git, following the
// .git-file indirection linked worktrees use, and returns the repository
// together with its worktree.
func openCheckout(dir string) (*git.Repository, *git.Worktree, error) {
	gr, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRepoNotFound, dir)
		}
		return nil, nil, err
	}
	wt, err := gr.Worktree()
	if err != nil {
		return nil, nil, err
	}
	return gr, wt, nil
}

// RootDir returns the repository's root directory (the plain checkout
// path, or the worktree-layout root that AdminDirName lives under).
func (h *Handle) RootDir() string { return h.rootDir }

// GitDir returns the path go-git/git operate on directly.
func (h *Handle) GitDir() string { return h.gitDir }

// WorktreeSetup reports whether this handle is a worktree-layout root.
func (h *Handle) WorktreeSetup() repo.WorktreeSetup { return h.worktreeSetup }

// git runs the git binary with args inside the repository's working
// directory (gitDir, unless a cwd override is given). Only the operations
// go-git cannot express go through here.
func (h *Handle) git(ctx context.Context, cwd string, args ...string) (string, error) {
	if cwd == "" {
		cwd = h.gitDir
	}

	cmd := exec.CommandContext(ctx, h.gitExec, args...)
	cmd.Dir = cwd
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	h.log.Log(ctx, slog.Level(-8), "running git command", "cwd", cwd, "args", args)

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	errOut := strings.TrimSpace(stderr.String())
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, errOut)
	}
	return out, nil
}

// setConfigOption writes one option into the repository config. The
// section must be one go-git does not model as a typed field, since
// SetConfig re-marshals typed sections over the raw form.
func (h *Handle) setConfigOption(section, key, value string) error {
	cfg, err := h.gitRepo.Config()
	if err != nil {
		return fmt.Errorf("%w: %s.%s: %v", ErrGitConfigSetError, section, key, err)
	}
	cfg.Raw.Section(section).SetOption(key, value)
	if err := h.gitRepo.SetConfig(cfg); err != nil {
		return fmt.Errorf("%w: %s.%s: %v", ErrGitConfigSetError, section, key, err)
	}
	return nil
}

// setBare flips core.bare, which is typed in go-git's config and so can't
// go through setConfigOption's raw path.
func (h *Handle) setBare(bare bool) error {
	cfg, err := h.gitRepo.Config()
	if err != nil {
		return fmt.Errorf("%w: core.bare: %v", ErrGitConfigSetError, err)
	}
	cfg.Core.IsBare = bare
	if err := h.gitRepo.SetConfig(cfg); err != nil {
		return fmt.Errorf("%w: core.bare: %v", ErrGitConfigSetError, err)
	}
	return nil
}

// sshAuth returns agent-based credentials for ssh remotes, nil for every
// other transport (go-git's file and https transports need none here).
func sshAuth(url string) transport.AuthMethod {
	t, err := repo.DetectRemoteType(url)
	if err != nil || t != repo.Ssh {
		return nil
	}
	user := "git"
	if i := strings.Index(url, "@"); i > 0 {
		head := url[:i]
		if j := strings.Index(head, "://"); j >= 0 {
			head = head[j+3:]
		}
		if head != "" {
			user = head
		}
	}
	auth, err := gitssh.NewSSHAgentAuth(user)
	if err != nil {
		return nil
	}
	return auth
}

// remoteFromGitConfig converts a go-git remote into the repo package's
// Remote model, classifying its URL.
func remoteFromGitConfig(c *gitconfig.RemoteConfig) (repo.Remote, error) {
	if err := utf8Name("remote", c.Name); err != nil {
		return repo.Remote{}, err
	}
	var url string
	if len(c.URLs) > 0 {
		url = c.URLs[0]
	}
	return repo.NewRemote(repo.RemoteName(c.Name), repo.RemoteUrl(url))
}

// utf8Name fails the current operation when the underlying library hands
// back an identifier that is not valid UTF-8.
func utf8Name(kind, name string) error {
	if pathutil.ValidUTF8(name) {
		return nil
	}
	return &NameNotUTF8Error{Kind: kind, Name: name}
}
