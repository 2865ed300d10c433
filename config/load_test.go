package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadTreeListYAML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.yaml", `
trees:
  - root: ~/repos
    repos:
      - name: group/foo
        worktree_setup: true
        remotes:
          - name: origin
            url: git@example.com:group/foo.git
`)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Trees == nil {
		t.Fatal("expected tree-list config")
	}
	trees, err := cfg.Trees.ToTrees()
	if err != nil {
		t.Fatalf("Trees(): %v", err)
	}
	if len(trees) != 1 || len(trees[0].Repos) != 1 {
		t.Fatalf("unexpected trees: %+v", trees)
	}
	r := trees[0].Repos[0]
	if string(r.Namespace) != "group" || string(r.Name) != "foo" {
		t.Fatalf("unexpected repo split: %+v", r)
	}
	if r.Remotes[0].Type.String() != "ssh" {
		t.Fatalf("expected ssh remote type, got %v", r.Remotes[0].Type)
	}
}

func TestLoadProviderSpecTOML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.toml", `
provider = "gitlab"
token_command = "echo tok"
root = "/tmp/repos"
force_ssh = true

[filters]
groups = ["foo", "bar"]
`)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider == nil {
		t.Fatal("expected provider-spec config")
	}
	if cfg.Provider.Provider != "gitlab" || !cfg.Provider.ForceSSH {
		t.Fatalf("unexpected provider config: %+v", cfg.Provider)
	}
	if len(cfg.Provider.Filters.Groups) != 2 {
		t.Fatalf("unexpected filters: %+v", cfg.Provider.Filters)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.yaml", `
trees:
  - root: ~/repos
    bogus: true
`)

	_, err := Load(p)
	var uk *ErrUnexpectedKey
	if !errors.As(err, &uk) {
		t.Fatalf("Load() = %v, want ErrUnexpectedKey", err)
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() = %v, want ErrNotFound", err)
	}
}

func TestWorktreeRootConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if cfg, err := LoadWorktreeRoot(dir); err != nil || cfg != nil {
		t.Fatalf("LoadWorktreeRoot() on missing file = %+v, %v", cfg, err)
	}

	want := &WorktreeRootConfig{
		PersistentBranches: []string{"main", "release"},
		Track: &TrackConfig{
			Default:       true,
			DefaultRemote: "origin",
		},
	}
	if err := SaveWorktreeRoot(dir, want); err != nil {
		t.Fatalf("SaveWorktreeRoot: %v", err)
	}

	got, err := LoadWorktreeRoot(dir)
	if err != nil {
		t.Fatalf("LoadWorktreeRoot: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if !got.IsPersistent("release") || got.IsPersistent("dev") {
		t.Fatalf("unexpected persistent branches: %+v", got.PersistentBranches)
	}
}
