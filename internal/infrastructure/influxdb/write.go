package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementSensorReadings  = "sensor_readings"
	MeasurementPropTriggers    = "prop_triggers"
	MeasurementPropActivations = "prop_activations"
)

// WriteReading records one raw sensor reading. Numeric payloads are stored
// in the value field; anything else is kept verbatim in raw so a flaky
// board can be diagnosed after the show.
func (c *Client) WriteReading(deviceID, deviceName, raw string, value int, numeric bool, at time.Time) {
	fields := map[string]interface{}{"raw": raw}
	if numeric {
		fields["value"] = value
	}
	c.writePoint(MeasurementSensorReadings, map[string]string{
		"device_id":   deviceID,
		"device_name": deviceName,
	}, fields, at)
}

// WriteTrigger records the scheduler's verdict on a triggered poll.
// outcome is "admitted" or "dropped"; reason explains a drop.
func (c *Client) WriteTrigger(prop, deviceID, outcome, reason string, at time.Time) {
	fields := map[string]interface{}{"count": 1}
	if reason != "" {
		fields["reason"] = reason
	}
	c.writePoint(MeasurementPropTriggers, map[string]string{
		"prop":      prop,
		"device_id": deviceID,
		"outcome":   outcome,
	}, fields, at)
}

// WriteActivation records what an admitted activation actually did.
func (c *Client) WriteActivation(prop string, stepsSent, stepsFailed, clips int, audio time.Duration, audioErr string, at time.Time) {
	fields := map[string]interface{}{
		"steps_sent":        stepsSent,
		"steps_failed":      stepsFailed,
		"clips":             clips,
		"audio_duration_ms": audio.Milliseconds(),
	}
	if audioErr != "" {
		fields["audio_error"] = audioErr
	}
	c.writePoint(MeasurementPropActivations, map[string]string{"prop": prop}, fields, at)
}

func (c *Client) writePoint(measurement string, tags map[string]string, fields map[string]interface{}, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, at))
}
