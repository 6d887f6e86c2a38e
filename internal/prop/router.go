package prop

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/mqtt"
)

// Logger is the logging interface used by the prop package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Tap observes every reading from a declared sensor, bound or not.
// It runs on the delivery goroutine and must not block.
type Tap func(r Reading, dev Device)

// Router demultiplexes sensor messages into per-device inboxes.
//
// Only sensors bound to a prop get an inbox. Readings from declared but
// unbound sensors reach the tap only; readings from unknown devices are
// dropped without error.
type Router struct {
	clock  clock.Clock
	logger Logger

	sensors map[string]Device

	mu      sync.RWMutex
	inboxes map[string]*Inbox
	tap     Tap

	seq atomic.Uint64
}

// NewRouter creates a router over the declared devices. Actuator entries
// are ignored.
func NewRouter(devices []Device, clk clock.Clock, logger Logger) *Router {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = noopLogger{}
	}

	sensors := make(map[string]Device)
	for _, d := range devices {
		if d.Role == RoleSensor {
			sensors[d.ID] = d
		}
	}

	return &Router{
		clock:   clk,
		logger:  logger,
		sensors: sensors,
		inboxes: make(map[string]*Inbox),
	}
}

// Bind creates the inbox for a sensor. Each sensor may be bound once.
func (r *Router) Bind(deviceID string) (*Inbox, error) {
	if _, ok := r.sensors[deviceID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotSensor, deviceID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.inboxes[deviceID]; taken {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyBound, deviceID)
	}
	in := NewInbox()
	r.inboxes[deviceID] = in
	return in, nil
}

// SetTap installs the reading observer.
func (r *Router) SetTap(tap Tap) {
	r.mu.Lock()
	r.tap = tap
	r.mu.Unlock()
}

// SensorIDs returns every declared sensor ID in sorted order.
func (r *Router) SensorIDs() []string {
	ids := make([]string, 0, len(r.sensors))
	for id := range r.sensors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HandleMessage is an mqtt.MessageHandler for device/<id>/sensor topics.
// It never returns an error: bad topics and unknown devices are not the
// sender's problem to hear about.
func (r *Router) HandleMessage(topic string, payload []byte) error {
	id, leaf, ok := mqtt.ParseDeviceTopic(topic)
	if !ok || leaf != mqtt.LeafSensor {
		r.logger.Debug("ignoring message on unexpected topic", "topic", topic)
		return nil
	}
	r.Route(id, payload)
	return nil
}

// Route delivers one payload from deviceID. It reports whether the reading
// was queued for a prop.
func (r *Router) Route(deviceID string, payload []byte) bool {
	dev, known := r.sensors[deviceID]
	if !known {
		r.logger.Debug("dropping reading from unknown device", "device_id", deviceID)
		return false
	}

	reading := Reading{
		DeviceID:   deviceID,
		Raw:        string(payload),
		Seq:        r.seq.Add(1),
		ReceivedAt: r.clock.Now(),
	}

	r.mu.RLock()
	in := r.inboxes[deviceID]
	tap := r.tap
	r.mu.RUnlock()

	if tap != nil {
		tap(reading, dev)
	}
	if in == nil {
		return false
	}
	in.Append(reading)
	return true
}
