package site

import (
	"context"
	"time"
)

// RunEvent is the notification emitted when an enhancement run completes.
// Consumers (dashboards, cache invalidators) key off RunID and Outcome.
type RunEvent struct {
	RunID       string    `json:"run_id"`
	SiteRoot    string    `json:"site_root"`
	Outcome     string    `json:"outcome"`
	Pages       int       `json:"pages"`
	Enhanced    int       `json:"enhanced"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	CompletedAt time.Time `json:"completed_at"`
}

// PageEvent is the notification emitted after a single page is enhanced
// outside a full run, typically by the daemon's file watcher.
type PageEvent struct {
	Page       string    `json:"page"`
	Status     string    `json:"status"`
	Buttons    int       `json:"buttons"`
	Tables     int       `json:"tables"`
	Anchors    int       `json:"anchors"`
	EnhancedAt time.Time `json:"enhanced_at"`
}

// EventPublisher delivers run and page events to an external consumer.
// Publish failures are reported as run warnings, never as run failures.
type EventPublisher interface {
	PublishRun(ctx context.Context, event RunEvent) error
	PublishPage(ctx context.Context, event PageEvent) error
}
