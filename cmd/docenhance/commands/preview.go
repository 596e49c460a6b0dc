package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docenhance/internal/config"
)

// PreviewCmd serves a local site with watch mode, without needing a config
// file. State lives in a throwaway directory and metrics stay off.
type PreviewCmd struct {
	Site string `short:"s" default:"./public" help:"Site directory to serve and watch"`
	Port int    `short:"p" default:"8135" help:"HTTP port"`
}

func (p *PreviewCmd) Run(_ *Global, _ *CLI) error {
	tmp, err := os.MkdirTemp("", "docenhance-preview-*")
	if err != nil {
		return fmt.Errorf("create preview state dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	raw := fmt.Sprintf(`version: "1.0"
site:
  root: %s
state:
  path: %s
daemon:
  watch: true
  http:
    addr: 127.0.0.1:%d
  metrics:
    enabled: false
`, p.Site, filepath.Join(tmp, "state.db"), p.Port)

	cfg, err := config.Parse([]byte(raw))
	if err != nil {
		return fmt.Errorf("build preview config: %w", err)
	}

	// Provide friendly user-facing messages on stdout for CLI integration tests.
	fmt.Printf("Previewing %s on http://127.0.0.1:%d\n", p.Site, p.Port)
	return RunDaemon(cfg)
}
