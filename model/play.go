package model

import (
	"time"

	"github.com/google/uuid"
)

// PlayOutcome describes how a playback cycle ended.
type PlayOutcome string

const (
	// OutcomeCompleted means the player was seen playing and then stopped.
	OutcomeCompleted PlayOutcome = "completed"
	// OutcomeUnobserved means the first poll after the grace period already
	// reported "not playing". Short, corrupt and unsupported files all end up here.
	OutcomeUnobserved PlayOutcome = "unobserved"
	// OutcomeInterrupted means the process was asked to stop mid-track.
	OutcomeInterrupted PlayOutcome = "interrupted"
	// OutcomeFailed means the player refused to load or start the track.
	OutcomeFailed PlayOutcome = "failed"
)

// Play is one motion-triggered playback, recorded after it ends.
type Play struct {
	ID        string      `json:"id" gorm:"primaryKey;size:36"`
	Path      string      `json:"path" gorm:"size:1024;not null"`
	Album     string      `json:"album" gorm:"size:255;index"`
	Title     string      `json:"title" gorm:"size:255"`
	Artist    string      `json:"artist" gorm:"size:255"`
	Outcome   PlayOutcome `json:"outcome" gorm:"size:16"`
	Polls     int         `json:"polls"`
	StartedAt time.Time   `json:"startedAt" gorm:"index"`
	EndedAt   time.Time   `json:"endedAt"`
}

// NewPlay starts a record for the given track.
func NewPlay(track Track, startedAt time.Time) *Play {
	return &Play{
		ID:        uuid.New().String(),
		Path:      track.Path,
		Album:     track.Album,
		Title:     track.Title,
		Artist:    track.Artist,
		StartedAt: startedAt,
	}
}

// Duration is the wall-clock time from play() to the detected end.
func (p *Play) Duration() time.Duration {
	if p.EndedAt.IsZero() {
		return 0
	}
	return p.EndedAt.Sub(p.StartedAt)
}

// Track returns the track the play refers to.
func (p *Play) Track() Track {
	return Track{Path: p.Path, Album: p.Album, Title: p.Title, Artist: p.Artist}
}
