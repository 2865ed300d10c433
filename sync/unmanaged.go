package sync

import (
	"os"
	"path/filepath"
)

// FindUnmanagedIn walks directory recursively and returns every repository
// found beneath it; no configured tree root is consulted. directory itself
// is never reported, even when it is a repository.
func FindUnmanagedIn(directory string) ([]string, error) {
	return findUnmanaged(directory, nil)
}

// findUnmanaged walks root recursively; a directory containing .git or
// .git-main-working-tree is a repository and terminates descent.
// Symlinks are never followed. Any discovered repository path not in
// managed is returned.
func findUnmanaged(root string, managed map[string]bool) ([]string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if info.Mode()&os.ModeSymlink != 0 || !info.IsDir() {
		return nil, nil
	}

	var unmanaged []string
	var walk func(dir string) error
	walk = func(dir string) error {
		if isRepoDir(dir) {
			clean := filepath.Clean(dir)
			if clean != filepath.Clean(root) && !managed[clean] {
				unmanaged = append(unmanaged, clean)
			}
			return nil
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			full := filepath.Join(dir, e.Name())
			fi, err := os.Lstat(full)
			if err != nil || fi.Mode()&os.ModeSymlink != 0 {
				continue
			}
			if err := walk(full); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return unmanaged, nil
}

func isRepoDir(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, ".git-main-working-tree")); err == nil {
		return true
	}
	return false
}
