// Package window queries the desktop for the currently focused window title.
//
// Each platform gets its own query strategy: Linux shells out to xdotool
// with an xprop fallback, macOS asks System Events through osascript, and
// Windows calls user32 directly. A failed query surfaces as an error on that
// sample only. The poll loop treats it as time away from tracked sites, so
// none of these strategies is allowed to stall or crash the process.
package window

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnavailable reports that this platform has no focused-window query.
var ErrUnavailable = errors.New("window title query not supported on this platform")

// execTimeout bounds each external query so a wedged helper binary cannot
// stall the poll loop.
const execTimeout = 2 * time.Second

// Sampler reads the title of the currently focused desktop window.
type Sampler interface {
	// Title returns the focused window's title. An empty title with a nil
	// error means a window exists but carries no text.
	Title(ctx context.Context) (string, error)

	// Available reports whether the sampler can work on this host, with
	// the reason when it cannot.
	Available() error
}

// New returns the sampler for the current platform.
func New(logger zerolog.Logger) Sampler {
	return newPlatformSampler(logger)
}

// cmdRunner runs an external command and returns its stdout. Samplers hold
// one as a field so tests can script command output.
type cmdRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
