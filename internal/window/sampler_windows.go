//go:build windows

package window

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
)

// Win32Sampler reads the foreground window title through user32. A zero
// window handle happens on the lock screen and during fast user switching
// and reports as an empty title, not an error.
type Win32Sampler struct {
	logger zerolog.Logger
}

func newPlatformSampler(logger zerolog.Logger) Sampler {
	return &Win32Sampler{
		logger: logger.With().Str("component", "window").Logger(),
	}
}

func (s *Win32Sampler) Title(_ context.Context) (string, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return "", nil
	}

	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return "", nil
	}
	return windows.UTF16ToString(buf[:n]), nil
}

func (s *Win32Sampler) Available() error {
	if err := user32.Load(); err != nil {
		return fmt.Errorf("user32.dll unavailable: %w", err)
	}
	return nil
}
