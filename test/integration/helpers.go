package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docenhance/internal/config"
	"git.home.luguber.info/inful/docenhance/internal/state"
)

// fixturePage carries every construct the enhancers act on: a code block,
// a pipe table and an in-page anchor.
const fixturePage = `<!DOCTYPE html>
<html><head><title>Doc</title></head><body>
<h1 id="intro">Intro</h1>
<p><a href="#usage">jump to usage</a></p>
<pre><code>echo hello</code></pre>
<table><tbody><tr><td>wide</td></tr></tbody></table>
<h2 id="usage">Usage</h2>
</body></html>`

// writeSiteFile writes content below the site root, creating directories
// as needed.
func writeSiteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newSiteConfig parses a config for a fixture site, keeping state in a
// separate temp directory so reruns within one test share fingerprints.
// extraYAML is inserted into the site block and must be indented two
// spaces, e.g. "  exclude:\n    - drafts/*\n".
func newSiteConfig(t *testing.T, root, extraYAML string) *config.Config {
	t.Helper()
	raw := fmt.Sprintf(`version: "1.0"
site:
  root: %s
%sstate:
  path: %s
`, root, extraYAML, filepath.Join(t.TempDir(), "state.db"))
	cfg, err := config.Parse([]byte(raw))
	require.NoError(t, err, "failed to parse fixture config")
	return cfg
}

// openStore opens the state store configured in cfg and closes it with the
// test.
func openStore(t *testing.T, cfg *config.Config) *state.Store {
	t.Helper()
	store, err := state.Open(cfg.State.Path)
	require.NoError(t, err, "failed to open state store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// initSiteRepo turns the site root into a git repository with one commit
// on main, returning the commit hash.
func initSiteRepo(t *testing.T, root string) string {
	t.Helper()

	repo, err := git.PlainInitWithOptions(root, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: "refs/heads/main"},
	})
	require.NoError(t, err, "failed to initialize git repo")

	w, err := repo.Worktree()
	require.NoError(t, err, "failed to get worktree")
	require.NoError(t, w.AddGlob("."), "failed to add fixture files")

	hash, err := w.Commit("Add fixture site", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err, "failed to create initial commit")
	return hash.String()
}
