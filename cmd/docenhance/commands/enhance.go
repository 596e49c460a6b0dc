package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docenhance/internal/config"
	"git.home.luguber.info/inful/docenhance/internal/events"
	ferrors "git.home.luguber.info/inful/docenhance/internal/foundation/errors"
	"git.home.luguber.info/inful/docenhance/internal/logfields"
	"git.home.luguber.info/inful/docenhance/internal/site"
	"git.home.luguber.info/inful/docenhance/internal/state"
)

// EnhanceCmd implements the 'enhance' command.
type EnhanceCmd struct {
	Site        string `short:"s" help:"Site root to enhance (overrides site.root from the config)"`
	Incremental bool   `short:"i" help:"Skip pages unchanged since the previous run"`
	DryRun      bool   `name:"dry-run" help:"Report what would change without writing anything"`
}

func (e *EnhanceCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyLogging(cfg, root.Verbose)
	if e.Site != "" {
		cfg.Site.Root = e.Site
	}
	return RunEnhance(cfg, e.Incremental, e.DryRun)
}

// RunEnhance performs one full site pass and prints the run summary.
func RunEnhance(cfg *config.Config, incremental, dryRun bool) error {
	// Provide friendly user-facing messages on stdout for CLI integration tests.
	fmt.Println("Starting site enhancement")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var opts []site.Option

	if incremental {
		store, err := state.Open(cfg.State.Path)
		if err != nil {
			return fmt.Errorf("open state store: %w", err)
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, site.WithStore(store))
	}

	if dryRun {
		opts = append(opts, site.WithDryRun(true))
	}

	if url := cfg.Events.NATSURL; url != "" && !dryRun {
		pub, err := events.Connect(url, cfg.Events.Subject)
		if err != nil {
			slog.Warn("Event publishing disabled", logfields.Error(err))
		} else {
			defer pub.Close()
			opts = append(opts, site.WithPublisher(pub))
		}
	}

	report, err := site.NewProcessor(cfg, opts...).EnhanceSite(ctx)
	if report != nil {
		fmt.Println(report.Summary())
	}
	if err != nil {
		return err
	}
	if report.OutcomeT == site.OutcomePartial {
		return ferrors.NewError(ferrors.CategoryEnhance, "enhancement completed with failures").
			WithContext("failed_pages", report.FailedPages).
			Build()
	}
	fmt.Println("Site enhanced successfully")
	return nil
}
