package enhance

import (
	"context"
	"errors"
	"sync"
)

// ErrClipboardUnavailable is returned by clipboard implementations that have
// no backing clipboard. Copy activations treat it like any other rejection:
// the button stays idle and nothing is surfaced to the reader.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Clipboard abstracts the destination of a copy activation. Implementations
// must be safe for concurrent use; activations run asynchronously.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// NopClipboard rejects every write. It is the default when no clipboard is
// configured, matching environments where no clipboard API exists.
type NopClipboard struct{}

func (NopClipboard) WriteText(context.Context, string) error {
	return ErrClipboardUnavailable
}

// MemoryClipboard stores writes in memory, newest last.
type MemoryClipboard struct {
	mu     sync.Mutex
	writes []string
	err    error
}

// NewMemoryClipboard creates an empty in-memory clipboard.
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{}
}

// WriteText records text as the newest clipboard content, or returns the
// configured rejection error.
func (c *MemoryClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.writes = append(c.writes, text)
	return nil
}

// Text returns the current clipboard content, empty when nothing has been
// written yet.
func (c *MemoryClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.writes) == 0 {
		return ""
	}
	return c.writes[len(c.writes)-1]
}

// Writes returns every write in order.
func (c *MemoryClipboard) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.writes))
	copy(out, c.writes)
	return out
}

// FailWith makes subsequent writes return err. Passing nil restores normal
// operation.
func (c *MemoryClipboard) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}
