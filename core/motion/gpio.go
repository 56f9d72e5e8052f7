package motion

import (
	"context"
	"fmt"
	"time"

	"motionfm/logger"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgePin is the part of gpio.PinIn the watcher needs.
type edgePin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
	WaitForEdge(timeout time.Duration) bool
	Halt() error
}

// GPIOWatcher watches a PIR sensor wired to a digital input pin.
type GPIOWatcher struct {
	pin  edgePin
	name string
	poll time.Duration
}

// NewGPIOWatcher initialises the host drivers and opens the named pin
// (for example "GPIO4" for BCM pin 4 on a Raspberry Pi).
func NewGPIOWatcher(name string, poll time.Duration) (*GPIOWatcher, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise GPIO host drivers: %w", err)
	}

	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("GPIO pin %q not found", name)
	}

	return newGPIOWatcher(p, name, poll)
}

func newGPIOWatcher(p edgePin, name string, poll time.Duration) (*GPIOWatcher, error) {
	if err := p.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("failed to configure GPIO pin %s as input: %w", name, err)
	}

	logger.Debug("GPIO motion sensor ready",
		logger.String("pin", name),
		logger.Duration("poll", poll))

	return &GPIOWatcher{pin: p, name: name, poll: poll}, nil
}

// WaitForMotion blocks until the pin reads high. The edge wait is sliced by
// the poll interval so a cancelled ctx is noticed.
func (w *GPIOWatcher) WaitForMotion(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.pin.Read() == gpio.High {
			return nil
		}
		w.pin.WaitForEdge(w.poll)
	}
}

// Active reports whether the pin currently reads high.
func (w *GPIOWatcher) Active() (bool, error) {
	return w.pin.Read() == gpio.High, nil
}

// Close releases the edge detection resources of the pin.
func (w *GPIOWatcher) Close() error {
	return w.pin.Halt()
}
