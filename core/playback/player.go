package playback

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotLoaded is returned by Play when no media was loaded first.
	ErrNotLoaded = errors.New("no media loaded")
	// ErrUnplayable marks an error about one track, not about the engine.
	// The controller skips such a track instead of stopping.
	ErrUnplayable = errors.New("track cannot be played")
)

// Player is the media engine the controller drives. Playback itself runs
// outside the calling goroutine; completion is only observable by polling
// IsPlaying.
type Player interface {
	// Load replaces the current media reference with path.
	Load(ctx context.Context, path string) error
	// Play starts the loaded media and returns without waiting for it.
	Play(ctx context.Context) error
	IsPlaying(ctx context.Context) (bool, error)
	Stop(ctx context.Context) error
	Close() error
}

// Clock abstracts time so tests can drive the polling loop.
type Clock interface {
	Now() time.Time
	// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock uses the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
