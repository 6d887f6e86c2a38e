package main

import (
	"context"
	"time"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/logging"
	"github.com/jakelevirne/Halloween2025/internal/show"
)

// telemetryWriter is the subset of the InfluxDB client the show writes to.
type telemetryWriter interface {
	WriteTrigger(prop, deviceID, outcome, reason string, at time.Time)
	WriteActivation(prop string, stepsSent, stepsFailed, clips int, audio time.Duration, audioErr string, at time.Time)
}

// telemetrySink turns show events into InfluxDB points.
type telemetrySink struct {
	influx telemetryWriter
}

// Record implements show.Sink.
func (s telemetrySink) Record(_ context.Context, ev show.Event) {
	switch ev.Type {
	case show.EventAdmitted:
		s.influx.WriteTrigger(ev.Prop, ev.DeviceID, "admitted", "", ev.At)
	case show.EventDropped:
		s.influx.WriteTrigger(ev.Prop, ev.DeviceID, "dropped", string(ev.Reason), ev.At)
	case show.EventSettled:
		s.influx.WriteActivation(ev.Prop, ev.StepsSent, ev.StepsFailed, ev.Clips, ev.AudioLength, ev.Err, ev.At)
	}
}

// logSink writes a one-line summary of every finished activation.
func logSink(log *logging.Logger) show.Sink {
	return show.SinkFunc(func(_ context.Context, ev show.Event) {
		if ev.Type != show.EventSettled {
			return
		}
		log.Info("activation complete",
			"prop", ev.Prop,
			"activation", ev.Activation,
			"steps_sent", ev.StepsSent,
			"steps_failed", ev.StepsFailed,
			"clips", ev.Clips,
			"audio", ev.AudioLength,
			"discarded", ev.Discarded,
		)
	})
}
