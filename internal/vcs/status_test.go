package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/utilitywarehouse/git-workspace/repo"
)

func TestStatusCleanRepo(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	st, err := h.Status(context.Background(), dir)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Head == nil || *st.Head != "main" {
		t.Fatalf("Head = %v, want main", st.Head)
	}
	if st.Changes == nil || !st.Changes.Empty() {
		t.Fatalf("Changes = %+v, want empty", st.Changes)
	}
	if st.Empty {
		t.Error("a checkout with a branch checked out is never reported Empty")
	}
}

func TestStatusClassifiesChanges(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := h.Status(context.Background(), dir)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Changes.New != 1 || st.Changes.Modified != 1 {
		t.Fatalf("Changes = %+v, want New=1 Modified=1", st.Changes)
	}
	if st.Empty {
		t.Error("a dirty checkout must not report Empty")
	}
}

func TestChangesEmptyAssertion(t *testing.T) {
	if !ChangesEmptyAssertion(repo.Changes{}, false) {
		t.Error("expected true for no changes reported and none expected")
	}
	if ChangesEmptyAssertion(repo.Changes{}, true) {
		t.Error("expected false when changes were expected but none found")
	}
	if !ChangesEmptyAssertion(repo.Changes{New: 1}, true) {
		t.Error("expected true when changes were expected and found")
	}
}

func TestHasIgnoredFiles(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	if ignored, err := h.HasIgnoredFiles(ctx, dir); err != nil || ignored {
		t.Fatalf("HasIgnoredFiles before .gitignore = %v, %v, want false", ignored, err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeAndCommit(t, dir, ".gitignore", "*.log\n", "add gitignore")
	if err := os.WriteFile(filepath.Join(dir, "debug.log"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ignored, err := h.HasIgnoredFiles(ctx, dir)
	if err != nil {
		t.Fatalf("HasIgnoredFiles: %v", err)
	}
	if !ignored {
		t.Error("expected an ignored file to be detected")
	}
}

func TestSubmodulesAtClassification(t *testing.T) {
	subDir := t.TempDir()
	initRepo(t, subDir)

	dir := t.TempDir()
	initRepo(t, dir)
	runGit(t, dir, "-c", "protocol.file.allow=always", "submodule", "add", subDir, "sub")
	runGit(t, dir, "commit", "-q", "-m", "add submodule")

	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	subs, err := h.submodulesAt(ctx, dir)
	if err != nil {
		t.Fatalf("submodulesAt: %v", err)
	}
	if len(subs) != 1 || subs[0].Name != "sub" || subs[0].State != repo.SubmoduleClean {
		t.Fatalf("subs = %+v, want one clean submodule named sub", subs)
	}

	// Advance the submodule's own HEAD without telling the superproject:
	// the superproject's index still points at the old commit, so this is
	// a commit-pointer mismatch (the porcelain "+" prefix) -> OutOfDate,
	// not Changed.
	writeAndCommit(t, filepath.Join(dir, "sub"), "more.txt", "more", "advance submodule")
	subs, err = h.submodulesAt(ctx, dir)
	if err != nil {
		t.Fatalf("submodulesAt: %v", err)
	}
	if len(subs) != 1 || subs[0].State != repo.SubmoduleOutOfDate {
		t.Fatalf("subs = %+v, want OutOfDate after advancing the submodule HEAD", subs)
	}

	// Dirty the submodule's own working tree: this has no porcelain-prefix
	// signal at all and must be caught by submoduleDirty.
	if err := os.WriteFile(filepath.Join(dir, "sub", "untracked.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	subs, err = h.submodulesAt(ctx, dir)
	if err != nil {
		t.Fatalf("submodulesAt: %v", err)
	}
	if len(subs) != 1 || subs[0].State != repo.SubmoduleChanged {
		t.Fatalf("subs = %+v, want Changed once the submodule working tree is dirty", subs)
	}
}

func TestBranchTrackingListViaStatus(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	h, err := Open(dir, repo.NoWorktree)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	runGit(t, dir, "branch", "feature")

	st, err := h.Status(ctx, dir)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	found := false
	for _, b := range st.Branches {
		if b.Local == "feature" {
			found = true
			if b.Upstream != nil {
				t.Errorf("unexpected upstream on untracked branch: %v", *b.Upstream)
			}
		}
	}
	if !found {
		t.Fatal("expected feature branch in Status().Branches")
	}
}
