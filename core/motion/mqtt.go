package motion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"motionfm/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig describes a networked motion sensor.
type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// MQTTWatcher treats the last state published on a topic as the sensor level.
type MQTTWatcher struct {
	client mqtt.Client
	topic  string

	mu     sync.Mutex
	active bool

	events    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewMQTTWatcher connects to the broker and subscribes to the sensor topic.
// The subscription is renewed on every reconnect.
func NewMQTTWatcher(cfg MQTTConfig) (*MQTTWatcher, error) {
	w := newMQTTWatcher(cfg.Topic)

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		token := c.Subscribe(w.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
			w.handle(msg.Payload())
		})
		if err := waitToken(token, cfg.Timeout); err != nil {
			logger.Error("failed to subscribe to motion topic",
				logger.String("topic", w.topic),
				logger.ErrorField(err))
			return
		}
		logger.Info("subscribed to motion topic", logger.String("topic", w.topic))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", logger.ErrorField(err))
	})

	w.client = mqtt.NewClient(opts)
	if err := waitToken(w.client.Connect(), cfg.Timeout); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	return w, nil
}

// waitToken waits for an MQTT operation. Running out of time is an error too.
func waitToken(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return token.Error()
}

func newMQTTWatcher(topic string) *MQTTWatcher {
	return &MQTTWatcher{
		topic:  topic,
		events: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// handle records one sensor message. Unrecognised payloads are ignored.
func (w *MQTTWatcher) handle(payload []byte) {
	active, ok := ParsePayload(payload)
	if !ok {
		logger.Debug("ignoring motion payload", logger.String("payload", string(payload)))
		return
	}

	w.mu.Lock()
	w.active = active
	w.mu.Unlock()

	if active {
		select {
		case w.events <- struct{}{}:
		default:
		}
	}
}

// WaitForMotion returns at once while the last message said "active",
// otherwise it waits for the next active message.
func (w *MQTTWatcher) WaitForMotion(ctx context.Context) error {
	// an old notification must not count for this wait
	select {
	case <-w.events:
	default:
	}

	if active, _ := w.Active(); active {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.closed:
		return ErrClosed
	case <-w.events:
		return nil
	}
}

// Active reports the last state the sensor published.
func (w *MQTTWatcher) Active() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active, nil
}

// Close unsubscribes and disconnects. Pending waits return ErrClosed.
func (w *MQTTWatcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.closed)
		if w.client != nil && w.client.IsConnected() {
			w.client.Unsubscribe(w.topic).WaitTimeout(time.Second)
			w.client.Disconnect(250)
		}
	})
	return nil
}

var (
	activeWords   = []string{"1", "on", "true", "motion", "detected", "active", "occupied"}
	inactiveWords = []string{"0", "off", "false", "clear", "inactive", "no_motion", "unoccupied"}
	jsonKeys      = []string{"occupancy", "motion", "presence"}
)

// ParsePayload understands plain words ("on", "1", "motion"...) and JSON
// objects from Zigbee style sensors such as {"occupancy": true}.
func ParsePayload(payload []byte) (active bool, ok bool) {
	text := strings.ToLower(strings.TrimSpace(string(payload)))

	for _, w := range activeWords {
		if text == w {
			return true, true
		}
	}
	for _, w := range inactiveWords {
		if text == w {
			return false, true
		}
	}

	if strings.HasPrefix(text, "{") {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return false, false
		}
		for _, key := range jsonKeys {
			if v, exists := obj[key].(bool); exists {
				return v, true
			}
		}
	}

	return false, false
}
