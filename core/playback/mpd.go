package playback

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"motionfm/logger"

	"github.com/fhs/gompd/v2/mpd"
)

// mpdClient is the subset of *mpd.Client the player uses.
type mpdClient interface {
	Ping() error
	Clear() error
	Add(uri string) error
	Play(pos int) error
	Stop() error
	Status() (mpd.Attrs, error)
	Close() error
}

// MPDPlayer drives a Music Player Daemon. The queue is replaced on every Load.
type MPDPlayer struct {
	dial     func() (mpdClient, error)
	musicDir string

	mu     sync.Mutex
	client mpdClient
	uri    string
}

// NewMPDPlayer connects to MPD at addr. musicDir is MPD's music_directory;
// tracks below it are sent as relative URIs, others as file:// URIs, which
// MPD only accepts over a local connection.
func NewMPDPlayer(addr, password, musicDir string) (*MPDPlayer, error) {
	dial := func() (mpdClient, error) {
		network := "tcp"
		if strings.HasPrefix(addr, "/") {
			network = "unix"
		}
		c, err := mpd.DialAuthenticated(network, addr, password)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MPD at %s: %w", addr, err)
		}
		return c, nil
	}
	return newMPDPlayer(dial, musicDir)
}

func newMPDPlayer(dial func() (mpdClient, error), musicDir string) (*MPDPlayer, error) {
	c, err := dial()
	if err != nil {
		return nil, err
	}
	return &MPDPlayer{dial: dial, musicDir: musicDir, client: c}, nil
}

// conn returns a live client. MPD drops idle connections, and the player
// may sit idle for hours between two motion events.
func (p *MPDPlayer) conn() (mpdClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		if err := p.client.Ping(); err == nil {
			return p.client, nil
		}
		p.client.Close()
		p.client = nil
		logger.Debug("MPD connection went stale, reconnecting")
	}

	c, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.client = c
	return c, nil
}

// URI converts a track path to what MPD expects.
func (p *MPDPlayer) URI(path string) string {
	if p.musicDir != "" {
		rel, err := filepath.Rel(p.musicDir, path)
		if err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return "file://" + path
}

// Load replaces the MPD queue with the single track at path.
func (p *MPDPlayer) Load(ctx context.Context, path string) error {
	c, err := p.conn()
	if err != nil {
		return err
	}

	uri := p.URI(path)
	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear MPD queue: %w", err)
	}
	if err := c.Add(uri); err != nil {
		return trackError("queue", uri, err)
	}

	p.mu.Lock()
	p.uri = uri
	p.mu.Unlock()
	return nil
}

// trackError marks MPD ACK replies as ErrUnplayable. Those are about the
// command's argument (unknown URI, not yet in the database, unreadable file).
// I/O errors and authentication failures stay fatal.
func trackError(op, uri string, err error) error {
	var ack mpd.Error
	if errors.As(err, &ack) && ack.Code != mpd.ErrorPassword {
		return fmt.Errorf("failed to %s %s: %w: %w", op, uri, ErrUnplayable, err)
	}
	return fmt.Errorf("failed to %s %s: %w", op, uri, err)
}

// Play starts the first (only) queue entry.
func (p *MPDPlayer) Play(ctx context.Context) error {
	p.mu.Lock()
	uri := p.uri
	p.mu.Unlock()
	if uri == "" {
		return ErrNotLoaded
	}

	c, err := p.conn()
	if err != nil {
		return err
	}
	if err := c.Play(0); err != nil {
		return trackError("play", uri, err)
	}
	return nil
}

// IsPlaying reports whether MPD's state is "play".
func (p *MPDPlayer) IsPlaying(ctx context.Context) (bool, error) {
	c, err := p.conn()
	if err != nil {
		return false, err
	}
	status, err := c.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read MPD status: %w", err)
	}
	return status["state"] == "play", nil
}

func (p *MPDPlayer) Stop(ctx context.Context) error {
	c, err := p.conn()
	if err != nil {
		return err
	}
	return c.Stop()
}

func (p *MPDPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}
