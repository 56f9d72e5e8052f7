package motion

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrClosed is returned by WaitForMotion after the watcher was closed.
	ErrClosed = errors.New("motion watcher closed")
	// ErrTimeout is returned when the MQTT broker does not answer in time.
	ErrTimeout = errors.New("timed out waiting for the MQTT broker")
)

// Watcher blocks until the sensor reports presence.
type Watcher interface {
	// WaitForMotion returns nil as soon as the sensor is active. If it is
	// already active when called, it returns immediately.
	WaitForMotion(ctx context.Context) error
	Close() error
}

// Reader reports the current sensor level without blocking.
type Reader interface {
	Active() (bool, error)
}

// Sample reads r every interval and passes the level to fn until ctx ends.
func Sample(ctx context.Context, r Reader, interval time.Duration, fn func(active bool)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for ctx.Err() == nil {
		active, err := r.Active()
		if err != nil {
			return err
		}
		fn(active)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}
