package vcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/utilitywarehouse/git-workspace/repo"
)

// Remotes lists configured remotes.
func (h *Handle) Remotes(ctx context.Context) ([]repo.Remote, error) {
	gitRemotes, err := h.gitRepo.Remotes()
	if err != nil {
		return nil, err
	}
	remotes := make([]repo.Remote, 0, len(gitRemotes))
	for _, gr := range gitRemotes {
		r, err := remoteFromGitConfig(gr.Config())
		if err != nil {
			return nil, err
		}
		remotes = append(remotes, r)
	}
	return remotes, nil
}

// FindRemote returns the named remote and true, or false if absent.
func (h *Handle) FindRemote(ctx context.Context, name repo.RemoteName) (repo.Remote, bool, error) {
	gr, err := h.gitRepo.Remote(string(name))
	if err != nil {
		return repo.Remote{}, false, nil
	}
	r, err := remoteFromGitConfig(gr.Config())
	if err != nil {
		return repo.Remote{}, false, err
	}
	return r, true, nil
}

// NewRemote adds a new remote.
func (h *Handle) NewRemote(ctx context.Context, name repo.RemoteName, url repo.RemoteUrl) error {
	_, err := h.gitRepo.CreateRemote(&gitconfig.RemoteConfig{
		Name: string(name),
		URLs: []string{string(url)},
	})
	return err
}

// RemoteSetURL updates an existing remote's URL.
func (h *Handle) RemoteSetURL(ctx context.Context, name repo.RemoteName, url repo.RemoteUrl) error {
	cfg, err := h.gitRepo.Config()
	if err != nil {
		return err
	}
	rc, ok := cfg.Remotes[string(name)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
	}
	rc.URLs = []string{string(url)}
	return h.gitRepo.SetConfig(cfg)
}

// RemoteDelete removes a remote.
func (h *Handle) RemoteDelete(ctx context.Context, name repo.RemoteName) error {
	return h.gitRepo.DeleteRemote(string(name))
}

// RenameRemote renames a remote, rewriting its default fetch refspec and
// moving its remote-tracking refs. It fails with ErrRefspecRenameFailed
// when the remote is missing or carries a non-default refspec that cannot
// be rewritten mechanically.
func (h *Handle) RenameRemote(ctx context.Context, oldName, newName repo.RemoteName) error {
	cfg, err := h.gitRepo.Config()
	if err != nil {
		return err
	}
	rc, ok := cfg.Remotes[string(oldName)]
	if !ok {
		return fmt.Errorf("%w: no remote %q", ErrRefspecRenameFailed, oldName)
	}

	defaultSpec := gitconfig.RefSpec("+refs/heads/*:refs/remotes/" + string(oldName) + "/*")
	renamedSpec := gitconfig.RefSpec("+refs/heads/*:refs/remotes/" + string(newName) + "/*")
	renamed := make([]gitconfig.RefSpec, 0, len(rc.Fetch))
	for _, spec := range rc.Fetch {
		if spec != defaultSpec {
			return fmt.Errorf("%w: %s", ErrRefspecRenameFailed, spec)
		}
		renamed = append(renamed, renamedSpec)
	}

	delete(cfg.Remotes, string(oldName))
	cfg.Remotes[string(newName)] = &gitconfig.RemoteConfig{
		Name:  string(newName),
		URLs:  rc.URLs,
		Fetch: renamed,
	}
	if err := h.gitRepo.SetConfig(cfg); err != nil {
		return err
	}

	return h.moveRemoteRefs(oldName, newName)
}

// moveRemoteRefs rewrites refs/remotes/<old>/* to refs/remotes/<new>/*,
// retargeting the symbolic HEAD entry along the way.
func (h *Handle) moveRemoteRefs(oldName, newName repo.RemoteName) error {
	oldPrefix := "refs/remotes/" + string(oldName) + "/"
	newPrefix := "refs/remotes/" + string(newName) + "/"

	iter, err := h.gitRepo.References()
	if err != nil {
		return err
	}
	var moved []*plumbing.Reference
	var removed []plumbing.ReferenceName
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		full := string(ref.Name())
		if len(full) < len(oldPrefix) || full[:len(oldPrefix)] != oldPrefix {
			return nil
		}
		newRefName := plumbing.ReferenceName(newPrefix + full[len(oldPrefix):])
		switch ref.Type() {
		case plumbing.SymbolicReference:
			target := string(ref.Target())
			if len(target) >= len(oldPrefix) && target[:len(oldPrefix)] == oldPrefix {
				target = newPrefix + target[len(oldPrefix):]
			}
			moved = append(moved, plumbing.NewSymbolicReference(newRefName, plumbing.ReferenceName(target)))
		default:
			moved = append(moved, plumbing.NewHashReference(newRefName, ref.Hash()))
		}
		removed = append(removed, ref.Name())
		return nil
	})
	if err != nil {
		return err
	}

	for _, ref := range moved {
		if err := h.gitRepo.Storer.SetReference(ref); err != nil {
			return err
		}
	}
	for _, name := range removed {
		if err := h.gitRepo.Storer.RemoveReference(name); err != nil {
			return err
		}
	}
	return nil
}

// Fetch updates name's remote-tracking refs, pruning refs deleted on the
// remote. Already-up-to-date is not an error.
func (h *Handle) Fetch(ctx context.Context, name repo.RemoteName) error {
	rem, err := h.gitRepo.Remote(string(name))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
	}
	var auth transport.AuthMethod
	if urls := rem.Config().URLs; len(urls) > 0 {
		auth = sshAuth(urls[0])
	}
	err = h.gitRepo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: string(name),
		Prune:      true,
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}
