package jukebox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"motionfm/core/library"
	"motionfm/core/motion"
	"motionfm/logger"
	"motionfm/model"
)

// Selector picks the next track path.
type Selector interface {
	Next() (string, error)
}

// Controller plays a track and blocks until it is over.
type Controller interface {
	Play(ctx context.Context, track model.Track) (*model.Play, error)
}

// Recorder receives every finished play. Failures are logged, never fatal.
type Recorder interface {
	RecordPlay(ctx context.Context, play *model.Play) error
}

// Describer turns a path into track metadata.
type Describer func(path string) (model.Track, error)

// Jukebox runs the motion → select → play loop.
type Jukebox struct {
	watcher    motion.Watcher
	selector   Selector
	controller Controller
	describe   Describer
	recorders  []Recorder

	cycles int
}

// Option customises a Jukebox.
type Option func(*Jukebox)

// WithRecorders adds play history sinks.
func WithRecorders(recorders ...Recorder) Option {
	return func(j *Jukebox) { j.recorders = append(j.recorders, recorders...) }
}

// WithDescriber replaces the tag reader.
func WithDescriber(d Describer) Option {
	return func(j *Jukebox) { j.describe = d }
}

// New wires the three stages together.
func New(watcher motion.Watcher, selector Selector, controller Controller, opts ...Option) *Jukebox {
	j := &Jukebox{
		watcher:    watcher,
		selector:   selector,
		controller: controller,
		describe:   library.ReadTrack,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run repeats Cycle until ctx is cancelled, which is a clean exit, or a
// cycle fails. Sensor, selection and player errors are all fatal.
func (j *Jukebox) Run(ctx context.Context) error {
	logger.Info("jukebox started")
	for {
		if err := j.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				logger.Info("jukebox stopped", logger.Int("cycles", j.cycles))
				return nil
			}
			return err
		}
	}
}

// Cycle waits for one motion event and plays one track to the end.
func (j *Jukebox) Cycle(ctx context.Context) error {
	logger.Info("waiting for motion")
	if err := j.watcher.WaitForMotion(ctx); err != nil {
		return fmt.Errorf("motion sensor: %w", err)
	}
	logger.Info("motion detected")

	path, err := j.selector.Next()
	if err != nil {
		return fmt.Errorf("track selection: %w", err)
	}

	track, err := j.describe(path)
	if err != nil {
		logger.Debug("using file name for track", logger.String("path", path), logger.ErrorField(err))
	}
	logger.Info("now playing",
		logger.String("path", path),
		logger.String("track", track.Label()))

	play, err := j.controller.Play(ctx, track)
	if play != nil {
		j.record(play)
	}
	if err != nil {
		return fmt.Errorf("playback: %w", err)
	}

	j.cycles++
	logger.Info("song over",
		logger.String("path", path),
		logger.String("outcome", string(play.Outcome)),
		logger.Duration("duration", play.Duration()))
	return nil
}

// Cycles returns how many cycles ran to the end, refused tracks included.
func (j *Jukebox) Cycles() int {
	return j.cycles
}

func (j *Jukebox) record(play *model.Play) {
	if len(j.recorders) == 0 {
		return
	}

	// the loop ctx may already be cancelled when an interrupted play is recorded
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for _, r := range j.recorders {
		if err := r.RecordPlay(ctx, play); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("failed to record play",
			logger.String("id", play.ID),
			logger.ErrorField(err))
	}
}
