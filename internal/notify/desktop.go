package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// Desktop delivers through the platform notification service. beeep talks
// to D-Bus on Linux, the notification center on macOS and toast
// notifications on Windows, so this backend carries no build tags of its
// own.
type Desktop struct {
	appName string
}

// NewDesktop returns a desktop notifier that prefixes titles with appName.
func NewDesktop(appName string) *Desktop {
	return &Desktop{appName: appName}
}

func (d *Desktop) Send(n Notification) error {
	title := n.Title
	if d.appName != "" {
		title = fmt.Sprintf("%s - %s", d.appName, n.Title)
	}
	if n.Urgent {
		return beeep.Alert(title, n.Message, "")
	}
	return beeep.Notify(title, n.Message, "")
}
