package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docenhance/internal/render"
	"git.home.luguber.info/inful/docenhance/internal/site"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	File     string `arg:"" help:"Markdown document to render" type:"existingfile"`
	Out      string `short:"o" help:"Output HTML file, or - for stdout (defaults to the input with .html)"`
	Title    string `help:"Page title override (defaults to the first heading)"`
	Sanitize bool   `help:"Strip scripts and event handlers from raw HTML in the document"`
}

func (r *RenderCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfigOrDefaults(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyLogging(cfg, root.Verbose)

	renderer := render.New(render.Options{
		Title:       r.Title,
		Sanitize:    r.Sanitize || cfg.Render.Sanitize,
		SkipRawHTML: !cfg.Render.UnsafeEnabled(),
		Enhance:     site.OptionsFromConfig(cfg),
	})

	result, err := renderer.RenderFile(r.File)
	if err != nil {
		return err
	}

	if r.Out == "-" {
		_, err := os.Stdout.Write(result.HTML)
		return err
	}

	out := r.Out
	if out == "" {
		out = strings.TrimSuffix(r.File, filepath.Ext(r.File)) + ".html"
	}
	// #nosec G306 -- rendered pages are world readable site artifacts
	if err := os.WriteFile(out, result.HTML, 0o644); err != nil {
		return fmt.Errorf("write rendered page: %w", err)
	}

	fmt.Printf("Rendered %q to %s\n", result.Title, out)
	return nil
}
