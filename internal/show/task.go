package show

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/jakelevirne/Halloween2025/internal/actuation"
	"github.com/jakelevirne/Halloween2025/internal/audio"
	"github.com/jakelevirne/Halloween2025/internal/prop"
)

// Dispatcher sends a prop's actuation plan.
type Dispatcher interface {
	Execute(plan actuation.Plan, activation int) actuation.Result
}

// Mixer starts a prop's sounds without waiting for them to finish.
type Mixer interface {
	Play(req audio.MixRequest) (time.Duration, error)
}

// Logger is the logging interface used by the show package.
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

// activation is the bookkeeping for the run in progress.
type activation struct {
	id       string
	number   int
	at       time.Time
	result   actuation.Result
	clips    int
	audio    time.Duration
	audioErr string
}

// Task is the fused detector and scheduler loop for one prop.
type Task struct {
	name     string
	deviceID string

	detector  *prop.Detector
	inbox     *prop.Inbox
	scheduler *Scheduler

	plan     actuation.Plan
	sound    audio.MixRequest
	settle   time.Duration
	jitter   time.Duration
	jitterFn func(time.Duration) time.Duration
	poll     time.Duration

	dispatcher Dispatcher
	mixer      Mixer
	sink       Sink
	clock      clock.Clock
	logger     Logger

	current *activation
}

// Poll runs one detection cycle. When a trigger is admitted it starts the
// sounds, sends the plan and reports how long the prop must hold before
// Settle.
func (t *Task) Poll(ctx context.Context) (hold time.Duration, admitted bool) {
	det := t.detector.Poll()
	if !det.Triggered {
		return 0, false
	}

	now := det.At
	number, reason, ok := t.scheduler.Admit(now)
	if !ok {
		t.logger.Debug("trigger dropped", "prop", t.name, "reason", reason)
		t.sink.Record(ctx, Event{
			Type:     EventDropped,
			Prop:     t.name,
			DeviceID: t.deviceID,
			At:       now,
			Reason:   reason,
		})
		return 0, false
	}

	act := &activation{id: uuid.NewString(), number: number, at: now}
	t.current = act

	t.logger.Info("prop triggered",
		"prop", t.name,
		"activation", number,
		"activation_id", act.id,
		"peak", det.Peak,
	)
	t.sink.Record(ctx, Event{
		Type:         EventAdmitted,
		ActivationID: act.id,
		Prop:         t.name,
		DeviceID:     t.deviceID,
		At:           now,
		Activation:   number,
	})

	t.scheduler.Begin()

	if t.jitter > 0 {
		if d := t.jitterFn(t.jitter); d > 0 {
			t.logger.Debug("jitter", "prop", t.name, "delay", d)
			t.clock.Sleep(d)
		}
	}

	if len(t.sound.Clips) > 0 {
		started := t.clock.Now()
		d, err := t.mixer.Play(t.sound)
		if err != nil {
			t.scheduler.SoundFailed()
			act.audioErr = err.Error()
			t.logger.Warn("sound failed", "prop", t.name, "error", err)
			t.sink.Record(ctx, Event{
				Type:         EventAudioFailed,
				ActivationID: act.id,
				Prop:         t.name,
				DeviceID:     t.deviceID,
				At:           t.clock.Now(),
				Err:          act.audioErr,
			})
		} else {
			t.scheduler.SoundStarted(started)
			act.clips = len(t.sound.Clips)
			act.audio = d
		}
	}

	if len(t.plan.Steps) > 0 {
		act.result = t.dispatcher.Execute(t.plan, number)
	}

	return t.plan.Hold(number, t.settle), true
}

// Settle ends the run: triggers that piled up while Running are thrown
// away and the prop goes back to Idle.
func (t *Task) Settle(ctx context.Context) {
	discarded := t.inbox.Clear()
	t.scheduler.Settle()

	act := t.current
	t.current = nil
	if act == nil {
		return
	}

	t.logger.Debug("prop settled", "prop", t.name, "discarded", discarded)
	t.sink.Record(ctx, Event{
		Type:         EventSettled,
		ActivationID: act.id,
		Prop:         t.name,
		DeviceID:     t.deviceID,
		At:           t.clock.Now(),
		Activation:   act.number,
		StepsSent:    act.result.Sent,
		StepsFailed:  act.result.Failed,
		StepsSkipped: act.result.Skipped,
		Clips:        act.clips,
		AudioLength:  act.audio,
		Discarded:    discarded,
		Err:          act.audioErr,
	})
}

// Run polls until ctx is cancelled. A run in progress when ctx ends is
// settled at once; the plan itself is never interrupted.
func (t *Task) Run(ctx context.Context) error {
	ticker := t.clock.Ticker(t.poll)
	defer ticker.Stop()

	t.logger.Info("prop task started",
		"prop", t.name,
		"sensor", t.deviceID,
		"rule", t.detector.Rule(),
		"threshold", t.detector.Threshold(),
	)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("prop task stopped", "prop", t.name)
			return nil
		case <-ticker.C:
		}

		hold, admitted := t.safePoll(ctx)
		if !admitted {
			continue
		}
		t.wait(ctx, hold)

		// Sinks still get the settle record during shutdown.
		t.Settle(context.WithoutCancel(ctx))
	}
}

func (t *Task) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := t.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// safePoll keeps a panic inside one prop from taking down the others.
func (t *Task) safePoll(ctx context.Context) (hold time.Duration, admitted bool) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("prop task panicked",
				"prop", t.name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			if t.scheduler.Snapshot().State != StateIdle {
				t.Settle(ctx)
			}
			hold, admitted = 0, false
		}
	}()
	return t.Poll(ctx)
}

// Status is a point-in-time view of one prop.
type Status struct {
	Name        string        `json:"name"`
	Sensor      string        `json:"sensor"`
	Rule        string        `json:"rule"`
	Threshold   int           `json:"threshold"`
	Cooldown    time.Duration `json:"cooldown_ns"`
	Hold        time.Duration `json:"hold_ns"`
	Exclusive   bool          `json:"exclusive"`
	Sounds      int           `json:"sounds"`
	Steps       int           `json:"steps"`
	State       string        `json:"state"`
	Activations int           `json:"activations"`
	LastFired   *time.Time    `json:"last_fired,omitempty"`
	Pending     int           `json:"pending_readings"`
}

// Status reports the prop's current state.
func (t *Task) Status() Status {
	snap := t.scheduler.Snapshot()
	s := Status{
		Name:        t.name,
		Sensor:      t.deviceID,
		Rule:        t.detector.Rule(),
		Threshold:   t.detector.Threshold(),
		Cooldown:    t.scheduler.cooldown,
		Hold:        t.plan.Hold(snap.Activations+1, t.settle),
		Exclusive:   t.scheduler.claim.Exclusive,
		Sounds:      len(t.sound.Clips),
		Steps:       len(t.plan.Steps),
		State:       snap.State.String(),
		Activations: snap.Activations,
		Pending:     t.inbox.Len(),
	}
	if snap.Fired {
		last := snap.LastFired
		s.LastFired = &last
	}
	return s
}
