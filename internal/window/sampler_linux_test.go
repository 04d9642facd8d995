//go:build linux

package window

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// TestX11Sampler_Title tests the xdotool happy path, the xprop fallback
// chain, and the failure modes of both.
func TestX11Sampler_Title(t *testing.T) {
	tests := []struct {
		name    string
		runner  cmdRunner
		want    string
		wantErr bool
	}{
		{
			name: "xdotool answers",
			runner: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				if name != "xdotool" {
					return nil, fmt.Errorf("unexpected command %s", name)
				}
				return []byte("YouTube - Mozilla Firefox\n"), nil
			},
			want: "YouTube - Mozilla Firefox",
		},
		{
			name: "xprop fallback",
			runner: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				switch {
				case name == "xdotool":
					return nil, errors.New("exec: \"xdotool\": executable file not found in $PATH")
				case name == "xprop" && args[0] == "-root":
					return []byte("_NET_ACTIVE_WINDOW(WINDOW): window id # 0x3c00007\n"), nil
				case name == "xprop" && args[0] == "-id":
					if args[1] != "0x3c00007" {
						return nil, fmt.Errorf("unexpected window id %s", args[1])
					}
					return []byte("_NET_WM_NAME(UTF8_STRING) = \"reddit: the front page\"\n"), nil
				}
				return nil, fmt.Errorf("unexpected command %s %v", name, args)
			},
			want: "reddit: the front page",
		},
		{
			name: "no active window",
			runner: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				if name == "xdotool" {
					return nil, errors.New("xdotool unavailable")
				}
				return []byte("_NET_ACTIVE_WINDOW(WINDOW): window id # 0x0\n"), nil
			},
			wantErr: true,
		},
		{
			name: "window without a name",
			runner: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				switch {
				case name == "xdotool":
					return nil, errors.New("xdotool unavailable")
				case name == "xprop" && args[0] == "-root":
					return []byte("_NET_ACTIVE_WINDOW(WINDOW): window id # 0x1a2b3c\n"), nil
				default:
					return []byte("_NET_WM_NAME: not found.\n"), nil
				}
			},
			wantErr: true,
		},
		{
			name: "everything fails",
			runner: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				return nil, errors.New("display not set")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &X11Sampler{run: tt.runner, logger: testLogger()}
			got, err := s.Title(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Title() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestParseWindowID tests extraction of the active window ID from xprop
// root-window output.
func TestParseWindowID(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{
			name: "normal id",
			out:  "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x3c00007\n",
			want: "0x3c00007",
		},
		{
			name: "zero id means nothing focused",
			out:  "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x0\n",
			want: "",
		},
		{
			name: "property missing",
			out:  "_NET_ACTIVE_WINDOW: no such atom on any window.\n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseWindowID(tt.out); got != tt.want {
				t.Errorf("parseWindowID() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestParseWindowName tests extraction of the quoted title from xprop
// window-name output, including titles that contain quotes.
func TestParseWindowName(t *testing.T) {
	tests := []struct {
		name   string
		out    string
		want   string
		wantOK bool
	}{
		{
			name:   "normal title",
			out:    "_NET_WM_NAME(UTF8_STRING) = \"YouTube - Mozilla Firefox\"\n",
			want:   "YouTube - Mozilla Firefox",
			wantOK: true,
		},
		{
			name:   "title containing quotes",
			out:    "_NET_WM_NAME(UTF8_STRING) = \"\\\"quoted\\\" video - YouTube\"\n",
			want:   "\\\"quoted\\\" video - YouTube",
			wantOK: true,
		},
		{
			name:   "property missing",
			out:    "_NET_WM_NAME: not found.\n",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseWindowName(tt.out)
			if ok != tt.wantOK {
				t.Fatalf("parseWindowName() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("parseWindowName() = %q, want %q", got, tt.want)
			}
		})
	}
}
