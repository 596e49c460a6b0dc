package events

import (
	"testing"

	"git.home.luguber.info/inful/docenhance/internal/site"
)

var _ site.EventPublisher = (*Publisher)(nil)

func TestConnectValidation(t *testing.T) {
	if _, err := Connect("", "docs.enhance.events"); err == nil {
		t.Fatal("expected error for empty URL")
	}
	if _, err := Connect("nats://127.0.0.1:4222", ""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestConnectUnreachable(t *testing.T) {
	// Port 1 is never a NATS server; Connect must fail instead of
	// deferring the error to the first publish.
	if _, err := Connect("nats://127.0.0.1:1", "docs.enhance.events"); err == nil {
		t.Fatal("expected connection error")
	}
}
