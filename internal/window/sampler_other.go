//go:build !linux && !darwin && !windows

package window

import (
	"context"

	"github.com/rs/zerolog"
)

// StubSampler stands in on platforms without a focused-window query. Every
// sample fails, which the poll loop counts as time away from tracked sites.
type StubSampler struct{}

func newPlatformSampler(_ zerolog.Logger) Sampler {
	return StubSampler{}
}

func (StubSampler) Title(_ context.Context) (string, error) {
	return "", ErrUnavailable
}

func (StubSampler) Available() error {
	return ErrUnavailable
}
