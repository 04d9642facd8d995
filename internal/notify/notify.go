// Package notify delivers usage events to the user as desktop or terminal
// notifications. Delivery is best effort by design. A notification that
// fails or gets rate limited is counted and dropped so that the tracking
// loop never stalls or double-fires on account of the messenger.
package notify

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Notification is one user-facing message.
type Notification struct {
	Title   string
	Message string

	// Urgent marks notifications the user should not miss, like a spent
	// daily budget. Backends map it to their closest severity concept.
	Urgent bool
}

// Notifier sends notifications.
type Notifier interface {
	Send(n Notification) error
}

// NewNotifier returns the backend selected by name. The name has already
// been validated by the config layer, the error here guards direct callers.
func NewNotifier(backend, appName string, logger zerolog.Logger) (Notifier, error) {
	switch backend {
	case "desktop":
		return NewDesktop(appName), nil
	case "stdout":
		return &Stdout{Out: os.Stdout}, nil
	case "off":
		return Discard{}, nil
	default:
		return nil, fmt.Errorf("unknown notification backend %q", backend)
	}
}

// Discard drops every notification. Used when notifications are turned off
// but event accounting should keep working.
type Discard struct{}

func (Discard) Send(Notification) error { return nil }
