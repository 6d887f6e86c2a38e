package journal

import (
	"context"

	"github.com/jakelevirne/Halloween2025/internal/show"
)

// Logger is the logging interface used by the journal.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Journal records show events as activation rows. It implements
// show.Sink; write failures are logged and never reach the prop task.
type Journal struct {
	repo   Repository
	mode   string
	logger Logger
}

// New creates a journal that tags rows with the show mode.
func New(repo Repository, mode string, logger Logger) *Journal {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Journal{repo: repo, mode: mode, logger: logger}
}

// Record implements show.Sink.
func (j *Journal) Record(ctx context.Context, ev show.Event) {
	var err error
	switch ev.Type {
	case show.EventAdmitted:
		err = j.repo.Create(ctx, &Activation{
			ID:          ev.ActivationID,
			Prop:        ev.Prop,
			DeviceID:    ev.DeviceID,
			Mode:        j.mode,
			Activation:  ev.Activation,
			TriggeredAt: ev.At,
			Status:      StatusRunning,
		})

	case show.EventAudioFailed:
		err = j.repo.SetAudioError(ctx, ev.ActivationID, ev.Err)

	case show.EventSettled:
		settled := ev.At
		a := &Activation{
			ID:           ev.ActivationID,
			SettledAt:    &settled,
			StepsSent:    ev.StepsSent,
			StepsFailed:  ev.StepsFailed,
			StepsSkipped: ev.StepsSkipped,
			Clips:        ev.Clips,
			Discarded:    ev.Discarded,
		}
		if ev.Clips > 0 {
			ms := ev.AudioLength.Milliseconds()
			a.AudioMS = &ms
		}
		if ev.Err != "" {
			msg := ev.Err
			a.AudioError = &msg
		}
		err = j.repo.Complete(ctx, a)

	default:
		return
	}

	if err != nil {
		j.logger.Warn("journal write failed",
			"event", string(ev.Type),
			"prop", ev.Prop,
			"activation_id", ev.ActivationID,
			"error", err,
		)
	}
}

// History returns a prop's recent activations, newest first.
func (j *Journal) History(ctx context.Context, prop string, limit int) ([]Activation, error) {
	return j.repo.ListByProp(ctx, prop, limit)
}
