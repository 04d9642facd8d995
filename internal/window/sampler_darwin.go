//go:build darwin

package window

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// appleScript asks System Events for the frontmost application and its front
// window, joined the way browsers compose their titles. Some processes have
// no window at all, so the window lookup sits inside a try block.
const appleScript = `
tell application "System Events"
	set frontApp to first application process whose frontmost is true
	set appName to name of frontApp
	try
		tell frontApp
			set windowTitle to name of front window
		end tell
		return appName & " - " & windowTitle
	on error
		return appName
	end try
end tell
`

// AppleScriptSampler reads the focused window title through osascript.
type AppleScriptSampler struct {
	run    cmdRunner
	logger zerolog.Logger
}

func newPlatformSampler(logger zerolog.Logger) Sampler {
	return &AppleScriptSampler{
		run:    defaultRunner,
		logger: logger.With().Str("component", "window").Logger(),
	}
}

func (s *AppleScriptSampler) Title(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	out, err := s.run(ctx, "osascript", "-e", appleScript)
	if err != nil {
		return "", fmt.Errorf("osascript query failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (s *AppleScriptSampler) Available() error {
	if _, err := exec.LookPath("osascript"); err != nil {
		return fmt.Errorf("osascript not found in PATH: %w", err)
	}
	return nil
}
