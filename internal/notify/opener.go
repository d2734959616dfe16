package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/browser"
)

func init() {
	// The opener commands print to the process stdio by default.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// OpenURL opens link with the host's default handler (xdg-open, open or
// rundll32 depending on the OS).
func OpenURL(link string) error {
	return browser.OpenURL(link)
}

// OpenerNotifier opens each event's deep link on the machine it runs on.
type OpenerNotifier struct {
	Open func(link string) error
}

func (n OpenerNotifier) Notify(_ context.Context, ev OrderPlaced) error {
	open := n.Open
	if open == nil {
		open = OpenURL
	}
	if err := open(ev.URL); err != nil {
		return fmt.Errorf("notify: open whatsapp link: %w", err)
	}
	return nil
}

// Multi fans an event out to several notifiers and returns the first error;
// every notifier is attempted.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev OrderPlaced) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
