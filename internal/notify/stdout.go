package notify

import (
	"fmt"
	"io"
	"strings"
)

// Stdout prints notifications to a writer. It is the headless fallback for
// terminals and tests.
type Stdout struct {
	Out io.Writer
}

func (s *Stdout) Send(n Notification) error {
	marker := "NOTICE"
	if n.Urgent {
		marker = "ALERT"
	}
	body := strings.ReplaceAll(n.Message, "\n", " ")
	_, err := fmt.Fprintf(s.Out, "[%s] %s: %s\n", marker, n.Title, body)
	return err
}
