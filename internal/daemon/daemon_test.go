package daemon

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docenhance/internal/config"
	"git.home.luguber.info/inful/docenhance/internal/site"
)

const daemonTestPage = `<!DOCTYPE html>
<html><head><title>Doc</title></head><body>
<h1 id="intro">Intro</h1>
<p><a href="#usage">jump to usage</a></p>
<pre><code>echo hello</code></pre>
<table><tbody><tr><td>wide</td></tr></tbody></table>
<h2 id="usage">Usage</h2>
</body></html>`

func writePage(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// testConfig builds a daemon config bound to an ephemeral port with state
// kept inside the test's temp directory.
func testConfig(t *testing.T, root, daemonYAML string) *config.Config {
	t.Helper()
	raw := fmt.Sprintf(`version: "1.0"
site:
  root: %s
state:
  path: %s
daemon:
%s`, root, filepath.Join(t.TempDir(), "state.db"), daemonYAML)
	cfg, err := config.Parse([]byte(raw))
	require.NoError(t, err)
	return cfg
}

func TestNewRequiresDaemonSection(t *testing.T) {
	cfg, err := config.Parse([]byte("version: \"1.0\"\nsite:\n  root: ./public\n"))
	require.NoError(t, err)
	require.Nil(t, cfg.Daemon)

	_, err = New(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "daemon section")
}

func TestDaemonLifecycle(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "index.html", daemonTestPage)

	cfg := testConfig(t, root, `  watch: false
  http:
    addr: 127.0.0.1:0
  metrics:
    enabled: true
`)

	d, err := New(cfg)
	require.NoError(t, err)
	require.Equal(t, StatusStopped, d.Status())

	require.NoError(t, d.Start(t.Context()))
	require.Equal(t, StatusRunning, d.Status())

	// A second start while running is refused.
	require.Error(t, d.Start(t.Context()))

	// The initial sweep runs in the background.
	require.Eventually(t, func() bool { return d.LastReport() != nil },
		5*time.Second, 20*time.Millisecond, "initial sweep never completed")
	report := d.LastReport()
	require.Equal(t, 1, report.EnhancedPages)

	base := "http://" + d.http.Addr()

	t.Run("healthz", func(t *testing.T) {
		resp, err := http.Get(base + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var health struct {
			Status    string `json:"status"`
			LastRunID string `json:"last_run_id"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		require.Equal(t, "running", health.Status)
		require.Equal(t, report.RunID, health.LastRunID)
	})

	t.Run("report endpoint", func(t *testing.T) {
		resp, err := http.Get(base + "/api/report")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got site.ReportSerializable
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Equal(t, report.RunID, got.RunID)
		require.Equal(t, 1, got.EnhancedPages)
	})

	t.Run("serves enhanced site", func(t *testing.T) {
		resp, err := http.Get(base + "/index.html")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "copy-button")
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		resp, err := http.Get(base + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "docenhance_run_outcomes_total")
	})

	require.NoError(t, d.Stop(t.Context()))
	require.Equal(t, StatusStopped, d.Status())

	// Stopping twice is a no-op.
	require.NoError(t, d.Stop(t.Context()))
}

func TestDaemonReportBeforeFirstSweep(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "index.html", daemonTestPage)

	cfg := testConfig(t, root, `  watch: false
  http:
    addr: 127.0.0.1:0
`)
	d, err := New(cfg)
	require.NoError(t, err)

	// Query the endpoint without starting the daemon loop; the handler
	// must answer 404 instead of panicking on a missing report.
	require.NoError(t, d.http.Start(t.Context()))
	t.Cleanup(func() { _ = d.http.Stop(t.Context()) })

	resp, err := http.Get("http://" + d.http.Addr() + "/api/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDaemonBindFailure(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "index.html", daemonTestPage)

	cfg := testConfig(t, root, `  watch: false
  http:
    addr: 127.0.0.1:0
`)
	first, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Start(t.Context()))
	t.Cleanup(func() { _ = first.Stop(t.Context()) })

	// Same port again must fail at Start, not asynchronously.
	cfg2 := testConfig(t, root, fmt.Sprintf(`  watch: false
  http:
    addr: %s
`, first.http.Addr()))
	second, err := New(cfg2)
	require.NoError(t, err)
	err = second.Start(t.Context())
	require.Error(t, err)
	require.Contains(t, err.Error(), "bind HTTP address")
	require.Equal(t, StatusStopped, second.Status())
}

func TestDaemonWatchReenhancesNewPages(t *testing.T) {
	root := t.TempDir()
	writePage(t, root, "index.html", daemonTestPage)

	cfg := testConfig(t, root, `  watch: true
  debounce: 30ms
  http:
    addr: 127.0.0.1:0
`)
	d, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, d.Start(t.Context()))
	t.Cleanup(func() { _ = d.Stop(t.Context()) })

	require.Eventually(t, func() bool { return d.LastReport() != nil },
		5*time.Second, 20*time.Millisecond)

	// A page the generator writes after startup is enhanced by the watcher.
	writePage(t, root, "guide/new.html", daemonTestPage)
	enhanced := func() bool {
		b, err := os.ReadFile(filepath.Join(root, "guide", "new.html"))
		return err == nil && strings.Contains(string(b), "copy-button")
	}
	require.Eventually(t, enhanced, 5*time.Second, 25*time.Millisecond,
		"watched page was never enhanced")
}
