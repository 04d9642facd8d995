//go:build darwin

package window

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// TestAppleScriptSampler_Title tests output trimming and error propagation.
func TestAppleScriptSampler_Title(t *testing.T) {
	tests := []struct {
		name    string
		runner  cmdRunner
		want    string
		wantErr bool
	}{
		{
			name: "app and window title",
			runner: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				return []byte("Safari - YouTube - Some Video\n"), nil
			},
			want: "Safari - YouTube - Some Video",
		},
		{
			name: "app without a window",
			runner: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				return []byte("Finder\n"), nil
			},
			want: "Finder",
		},
		{
			name: "osascript fails",
			runner: func(ctx context.Context, name string, args ...string) ([]byte, error) {
				return nil, errors.New("execution error: not authorized")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &AppleScriptSampler{run: tt.runner, logger: testLogger()}
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
