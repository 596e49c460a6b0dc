package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initTestRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("index.html"); err != nil {
		t.Fatalf("add: %v", err)
	}
	commit, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return dir, commit.String()
}

func TestResolve(t *testing.T) {
	dir, commit := initTestRepo(t)

	prov, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if prov.Commit != commit {
		t.Fatalf("commit = %s, want %s", prov.Commit, commit)
	}
	if prov.Branch != "master" {
		t.Fatalf("branch = %s, want master", prov.Branch)
	}
	if prov.Dirty {
		t.Fatalf("fresh commit reported dirty")
	}
}

func TestResolveSubdirectory(t *testing.T) {
	dir, commit := initTestRepo(t)
	sub := filepath.Join(dir, "docs")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	prov, err := Resolve(sub)
	if err != nil {
		t.Fatalf("resolve from subdirectory: %v", err)
	}
	if prov.Commit != commit {
		t.Fatalf("commit = %s, want %s", prov.Commit, commit)
	}
}

func TestResolveDirty(t *testing.T) {
	dir, _ := initTestRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>changed</html>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	prov, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !prov.Dirty {
		t.Fatalf("modified work tree reported clean")
	}
}

func TestResolveNonRepo(t *testing.T) {
	if _, err := Resolve(t.TempDir()); err == nil {
		t.Fatalf("expected error outside a repository")
	}
}

func TestProvenanceShort(t *testing.T) {
	p := &Provenance{Commit: "0123456789abcdef"}
	if p.Short() != "01234567" {
		t.Fatalf("short = %s", p.Short())
	}
	var nilProv *Provenance
	if nilProv.Short() != "" {
		t.Fatalf("nil provenance short should be empty")
	}
}
