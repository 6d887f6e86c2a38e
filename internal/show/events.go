package show

import (
	"context"
	"time"
)

// EventType names a show event. The values double as websocket channel
// names.
type EventType string

// Event types.
const (
	EventAdmitted    EventType = "prop.admitted"
	EventDropped     EventType = "prop.dropped"
	EventSettled     EventType = "prop.settled"
	EventAudioFailed EventType = "audio.failed"
)

// Event is something that happened to a prop.
type Event struct {
	Type         EventType     `json:"type"`
	ActivationID string        `json:"activation_id,omitempty"`
	Prop         string        `json:"prop"`
	DeviceID     string        `json:"device_id"`
	At           time.Time     `json:"at"`
	Activation   int           `json:"activation,omitempty"`
	Reason       DropReason    `json:"reason,omitempty"`
	StepsSent    int           `json:"steps_sent,omitempty"`
	StepsFailed  int           `json:"steps_failed,omitempty"`
	StepsSkipped int           `json:"steps_skipped,omitempty"`
	Clips        int           `json:"clips,omitempty"`
	AudioLength  time.Duration `json:"audio_length_ns,omitempty"`
	Discarded    int           `json:"discarded,omitempty"`
	Err          string        `json:"error,omitempty"`
}

// Sink receives show events. Record is called on the prop's own
// goroutine and should return quickly.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event)

// Record implements Sink.
func (f SinkFunc) Record(ctx context.Context, ev Event) { f(ctx, ev) }

// Sinks fans an event out to several sinks in order.
type Sinks []Sink

// Record implements Sink.
func (s Sinks) Record(ctx context.Context, ev Event) {
	for _, sink := range s {
		if sink != nil {
			sink.Record(ctx, ev)
		}
	}
}

type discardSink struct{}

func (discardSink) Record(context.Context, Event) {}
