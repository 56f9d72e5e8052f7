package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"motionfm/logger"
	"motionfm/model"
)

const (
	// DefaultGrace is how long the player gets to start before the first poll.
	DefaultGrace = 2 * time.Second
	// DefaultInterval is the pause between two IsPlaying polls.
	DefaultInterval = 2 * time.Second
)

// Controller plays one track at a time on a single long-lived Player.
type Controller struct {
	player   Player
	clock    Clock
	grace    time.Duration
	interval time.Duration
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithGrace sets the wait between Play and the first poll.
func WithGrace(d time.Duration) Option {
	return func(c *Controller) { c.grace = d }
}

// WithInterval sets the wait between polls.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// NewController wraps player with the default 2s grace and poll interval.
func NewController(player Player, opts ...Option) *Controller {
	c := &Controller{
		player:   player,
		clock:    RealClock{},
		grace:    DefaultGrace,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Play loads track, starts it and blocks until the player stops reporting
// that it is playing. A track that is never seen playing (too short, or
// rejected by the engine after starting) is reported with OutcomeUnobserved
// and no error. A track the engine refuses with ErrUnplayable is reported
// with OutcomeFailed and no error. If ctx ends first the track is stopped and
// ctx.Err() is returned together with an OutcomeInterrupted record.
func (c *Controller) Play(ctx context.Context, track model.Track) (*model.Play, error) {
	play := model.NewPlay(track, c.clock.Now())

	if err := c.player.Load(ctx, track.Path); err != nil {
		return c.reject(play, fmt.Errorf("failed to load %s: %w", track.Path, err))
	}
	if err := c.player.Play(ctx); err != nil {
		return c.reject(play, fmt.Errorf("failed to start %s: %w", track.Path, err))
	}

	err := c.waitForEnd(ctx, play)
	play.EndedAt = c.clock.Now()
	return play, err
}

// reject turns a per-track engine error into a failed play. Anything else
// is an engine failure and is returned as is.
func (c *Controller) reject(play *model.Play, err error) (*model.Play, error) {
	if !errors.Is(err, ErrUnplayable) {
		return nil, err
	}
	play.Outcome = model.OutcomeFailed
	play.EndedAt = c.clock.Now()
	logger.Warn("skipping track the player refused",
		logger.String("path", play.Path),
		logger.ErrorField(err))
	return play, nil
}

func (c *Controller) waitForEnd(ctx context.Context, play *model.Play) error {
	if err := c.clock.Sleep(ctx, c.grace); err != nil {
		return c.interrupt(play, err)
	}

	for {
		playing, err := c.player.IsPlaying(ctx)
		if err != nil {
			return fmt.Errorf("failed to query player state: %w", err)
		}
		play.Polls++

		if !playing {
			if play.Polls == 1 {
				play.Outcome = model.OutcomeUnobserved
				logger.Warn("track was not playing after the grace period",
					logger.String("path", play.Path),
					logger.Duration("grace", c.grace))
			} else {
				play.Outcome = model.OutcomeCompleted
			}
			return nil
		}

		if err := c.clock.Sleep(ctx, c.interval); err != nil {
			return c.interrupt(play, err)
		}
	}
}

func (c *Controller) interrupt(play *model.Play, cause error) error {
	play.Outcome = model.OutcomeInterrupted

	// ctx is already done, so stopping needs its own deadline
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.player.Stop(stopCtx); err != nil {
		logger.Warn("failed to stop player", logger.ErrorField(err))
	}
	return cause
}
