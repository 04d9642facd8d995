//go:build linux

package window

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// X11Sampler reads the focused window title from the X server. It prefers
// xdotool, which answers in one call, and falls back to the two-step xprop
// root-window query when xdotool is not installed.
type X11Sampler struct {
	run    cmdRunner
	logger zerolog.Logger
}

func newPlatformSampler(logger zerolog.Logger) Sampler {
	return &X11Sampler{
		run:    defaultRunner,
		logger: logger.With().Str("component", "window").Logger(),
	}
}

func (s *X11Sampler) Title(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	out, err := s.run(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err == nil {
		return strings.TrimSpace(string(out)), nil
	}
	xdoErr := err

	out, err = s.run(ctx, "xprop", "-root", "_NET_ACTIVE_WINDOW")
	if err != nil {
		return "", fmt.Errorf("no usable window query (xdotool: %v): %w", xdoErr, err)
	}
	id := parseWindowID(string(out))
	if id == "" {
		return "", fmt.Errorf("no active window reported by X server")
	}

	out, err = s.run(ctx, "xprop", "-id", id, "_NET_WM_NAME")
	if err != nil {
		return "", fmt.Errorf("failed to read name of window %s: %w", id, err)
	}
	title, ok := parseWindowName(string(out))
	if !ok {
		return "", fmt.Errorf("window %s has no readable name", id)
	}
	return title, nil
}

func (s *X11Sampler) Available() error {
	if _, err := exec.LookPath("xdotool"); err == nil {
		return nil
	}
	if _, err := exec.LookPath("xprop"); err == nil {
		return nil
	}
	return fmt.Errorf("neither xdotool nor xprop found in PATH")
}

// parseWindowID extracts the window ID from xprop -root output of the form
// "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x3c00007". A zero ID means no
// window has focus.
func parseWindowID(out string) string {
	idx := strings.LastIndex(out, "0x")
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(out[idx:])
	if id == "0x0" {
		return ""
	}
	return id
}

// parseWindowName extracts the quoted title from xprop output of the form
// `_NET_WM_NAME(UTF8_STRING) = "reddit: the front page"`.
func parseWindowName(out string) (string, bool) {
	start := strings.Index(out, `"`)
	end := strings.LastIndex(out, `"`)
	if start < 0 || end <= start {
		return "", false
	}
	return out[start+1 : end], true
}
