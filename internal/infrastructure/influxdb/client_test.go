package influxdb

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
)

// fakeWriter captures points instead of sending them.
type fakeWriter struct {
	mu      sync.Mutex
	points  []*write.Point
	flushes int
}

func (f *fakeWriter) WritePoint(p *write.Point) {
	f.mu.Lock()
	f.points = append(f.points, p)
	f.mu.Unlock()
}

func (f *fakeWriter) Flush() {
	f.mu.Lock()
	f.flushes++
	f.mu.Unlock()
}

func newTestClient() (*Client, *fakeWriter) {
	w := &fakeWriter{}
	return &Client{writer: w, connected: true}, w
}

func tags(p *write.Point) map[string]string {
	out := make(map[string]string)
	for _, t := range p.TagList() {
		out[t.Key] = t.Value
	}
	return out
}

func fields(p *write.Point) map[string]string {
	out := make(map[string]string)
	for _, f := range p.FieldList() {
		out[f.Key] = fmt.Sprint(f.Value)
	}
	return out
}

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestWriteReading(t *testing.T) {
	c, w := newTestClient()
	at := time.Date(2026, 10, 31, 20, 0, 0, 0, time.UTC)

	c.WriteReading("54:32:04:46:61:88", "coffin-sensor", "7", 7, true, at)
	c.WriteReading("54:32:04:46:61:88", "coffin-sensor", "garbage", 0, false, at)

	if len(w.points) != 2 {
		t.Fatalf("points = %d, want 2", len(w.points))
	}

	p := w.points[0]
	if p.Name() != MeasurementSensorReadings {
		t.Errorf("measurement = %q", p.Name())
	}
	if got := tags(p)["device_name"]; got != "coffin-sensor" {
		t.Errorf("device_name tag = %q", got)
	}
	if got := fields(p)["value"]; got != "7" {
		t.Errorf("value field = %q, want 7", got)
	}
	if !p.Time().Equal(at) {
		t.Errorf("time = %v, want %v", p.Time(), at)
	}

	if _, ok := fields(w.points[1])["value"]; ok {
		t.Error("non-numeric reading must not carry a value field")
	}
	if got := fields(w.points[1])["raw"]; got != "garbage" {
		t.Errorf("raw field = %q", got)
	}
}

func TestWriteTrigger(t *testing.T) {
	c, w := newTestClient()

	c.WriteTrigger("coffin", "s1", "dropped", "cooldown", time.Now())

	p := w.points[0]
	if p.Name() != MeasurementPropTriggers {
		t.Errorf("measurement = %q", p.Name())
	}
	tg := tags(p)
	if tg["prop"] != "coffin" || tg["outcome"] != "dropped" {
		t.Errorf("tags = %v", tg)
	}
	if got := fields(p)["reason"]; got != "cooldown" {
		t.Errorf("reason = %q", got)
	}
}

func TestWriteActivation(t *testing.T) {
	c, w := newTestClient()

	c.WriteActivation("coffin", 3, 1, 2, 1500*time.Millisecond, "", time.Now())

	f := fields(w.points[0])
	if f["steps_sent"] != "3" || f["steps_failed"] != "1" || f["clips"] != "2" {
		t.Errorf("fields = %v", f)
	}
	if f["audio_duration_ms"] != "1500" {
		t.Errorf("audio_duration_ms = %q", f["audio_duration_ms"])
	}
	if _, ok := f["audio_error"]; ok {
		t.Error("audio_error should be omitted when empty")
	}
}

func TestWrites_AfterClose(t *testing.T) {
	c, w := newTestClient()

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if w.flushes != 1 {
		t.Errorf("flushes = %d, want 1", w.flushes)
	}

	c.WriteReading("s1", "coffin", "1", 1, true, time.Now())
	c.Flush()

	if len(w.points) != 0 {
		t.Error("writes after Close must be dropped")
	}
	if w.flushes != 1 {
		t.Error("Flush after Close must be a no-op")
	}
	if err := c.HealthCheck(t.Context()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestClose_Nil(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}
