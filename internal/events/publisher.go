// Package events publishes enhancement notifications over NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docenhance/internal/logfields"
	"git.home.luguber.info/inful/docenhance/internal/retry"
	"git.home.luguber.info/inful/docenhance/internal/site"
)

// Subject suffixes under the configured subject root.
const (
	runSuffix  = "run_completed"
	pageSuffix = "page_enhanced"
)

// Publisher delivers run and page events to a JetStream subject tree. It
// implements site.EventPublisher.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	policy  retry.Policy
}

// Connect dials NATS and prepares the JetStream context. The subject is
// the tree root; events go out under <subject>.run_completed and
// <subject>.page_enhanced.
func Connect(url, subject string) (*Publisher, error) {
	if url == "" {
		return nil, fmt.Errorf("events: NATS URL is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("events: subject is required")
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	slog.Info("Event publisher connected",
		slog.String("url", url),
		slog.String("subject", subject))

	// Publishes sit inside the page loop, so the backoff stays short.
	policy := retry.NewPolicy(retry.ModeExponential, 200*time.Millisecond, 2*time.Second, 2)

	return &Publisher{conn: conn, js: js, subject: subject, policy: policy}, nil
}

// PublishRun emits a run_completed event.
func (p *Publisher) PublishRun(ctx context.Context, event site.RunEvent) error {
	if err := p.publish(ctx, p.subject+"."+runSuffix, event); err != nil {
		return err
	}
	slog.Debug("Published run event",
		logfields.RunID(event.RunID),
		slog.String("outcome", event.Outcome))
	return nil
}

// PublishPage emits a page_enhanced event.
func (p *Publisher) PublishPage(ctx context.Context, event site.PageEvent) error {
	if err := p.publish(ctx, p.subject+"."+pageSuffix, event); err != nil {
		return err
	}
	slog.Debug("Published page event", logfields.Page(event.Page))
	return nil
}

func (p *Publisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.policy.Do(ctx, "publish "+subject, func() error {
		_, err := p.js.Publish(ctx, subject, data)
		return err
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
