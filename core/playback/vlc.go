package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"motionfm/logger"
)

// VLCPlayer plays each track in its own headless VLC process. The process
// exits by itself at the end of the track, so "playing" means "still running".
type VLCPlayer struct {
	binary string

	mu     sync.Mutex
	media  string
	cmd    *exec.Cmd
	done   chan struct{}
	stderr bytes.Buffer
}

// NewVLCPlayer resolves binary (normally "cvlc") on PATH.
func NewVLCPlayer(binary string) (*VLCPlayer, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("VLC binary %q not found: %w", binary, err)
	}
	return &VLCPlayer{binary: path}, nil
}

// Load stops whatever is playing and remembers path for the next Play.
func (p *VLCPlayer) Load(ctx context.Context, path string) error {
	if err := p.Stop(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	p.media = path
	p.mu.Unlock()
	return nil
}

// Play starts a VLC process for the loaded media.
func (p *VLCPlayer) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.media == "" {
		return ErrNotLoaded
	}

	args := []string{"--play-and-exit", "--no-video", "--quiet", p.media}
	cmd := exec.Command(p.binary, args...)
	p.stderr.Reset()
	cmd.Stderr = &p.stderr

	logger.Debug("starting VLC",
		logger.String("command", p.binary+" "+strings.Join(args, " ")))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.binary, err)
	}

	done := make(chan struct{})
	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		stderr := strings.TrimSpace(p.stderr.String())
		p.mu.Unlock()
		if err != nil {
			logger.Warn("VLC exited with an error",
				logger.ErrorField(err),
				logger.String("stderr", stderr))
		}
		close(done)
	}()

	p.cmd = cmd
	p.done = done
	return nil
}

// IsPlaying reports whether the VLC process is still running.
func (p *VLCPlayer) IsPlaying(ctx context.Context) (bool, error) {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return false, nil
	}
	select {
	case <-done:
		return false, nil
	default:
		return true, nil
	}
}

// Stop kills the running process, if any, and waits for it to exit.
func (p *VLCPlayer) Stop(ctx context.Context) error {
	p.mu.Lock()
	cmd, done := p.cmd, p.done
	p.mu.Unlock()

	if cmd == nil {
		return nil
	}

	select {
	case <-done:
	default:
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("failed to stop VLC: %w", err)
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	p.cmd, p.done = nil, nil
	p.mu.Unlock()
	return nil
}

// Close stops playback.
func (p *VLCPlayer) Close() error {
	return p.Stop(context.Background())
}
