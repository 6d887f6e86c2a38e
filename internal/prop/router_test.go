package prop

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func testDevices() []Device {
	return []Device{
		{ID: "54:32:04:46:61:88", Name: "coffin-sensor", Role: RoleSensor},
		{ID: "54:32:04:46:61:40", Name: "coffin-actuator", Role: RoleActuator},
		{ID: "PROP9", Name: "spare-sensor", Role: RoleSensor},
	}
}

func TestRouter_Bind(t *testing.T) {
	r := NewRouter(testDevices(), nil, nil)

	if _, err := r.Bind("54:32:04:46:61:88"); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if _, err := r.Bind("54:32:04:46:61:88"); !errors.Is(err, ErrAlreadyBound) {
		t.Errorf("second Bind() error = %v, want ErrAlreadyBound", err)
	}
	if _, err := r.Bind("54:32:04:46:61:40"); !errors.Is(err, ErrNotSensor) {
		t.Errorf("Bind(actuator) error = %v, want ErrNotSensor", err)
	}
	if _, err := r.Bind("ghost"); !errors.Is(err, ErrNotSensor) {
		t.Errorf("Bind(unknown) error = %v, want ErrNotSensor", err)
	}
}

func TestRouter_HandleMessage(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 10, 31, 19, 0, 0, 0, time.UTC))
	r := NewRouter(testDevices(), mock, nil)

	in, err := r.Bind("54:32:04:46:61:88")
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	var tapped []string
	r.SetTap(func(rd Reading, dev Device) {
		tapped = append(tapped, dev.Name+"="+rd.Raw)
	})

	messages := []struct {
		topic   string
		payload string
	}{
		{"device/54:32:04:46:61:88/sensor", "0"},
		{"device/54:32:04:46:61:88/sensor", "1"},
		{"device/54:32:04:46:61:88/actuator", "S500"}, // wrong leaf
		{"device/ghost/sensor", "1"},                   // unknown device
		{"not/a/device/topic", "1"},                    // malformed
		{"device/PROP9/sensor", "1"},                   // declared, unbound
		{"device/54:32:04:46:61:88/sensor", "banana"},
	}
	for _, m := range messages {
		if err := r.HandleMessage(m.topic, []byte(m.payload)); err != nil {
			t.Errorf("HandleMessage(%q) error = %v", m.topic, err)
		}
	}

	got := in.Drain()
	if len(got) != 3 {
		t.Fatalf("inbox has %d readings, want 3", len(got))
	}
	for i, want := range []string{"0", "1", "banana"} {
		if got[i].Raw != want {
			t.Errorf("reading[%d] = %q, want %q", i, got[i].Raw, want)
		}
	}
	if !(got[0].Seq < got[1].Seq && got[1].Seq < got[2].Seq) {
		t.Errorf("sequence not increasing: %d %d %d", got[0].Seq, got[1].Seq, got[2].Seq)
	}
	if !got[0].ReceivedAt.Equal(mock.Now()) {
		t.Errorf("ReceivedAt = %v, want %v", got[0].ReceivedAt, mock.Now())
	}

	if len(tapped) != 4 || tapped[3] != "coffin-sensor=banana" || tapped[2] != "spare-sensor=1" {
		t.Errorf("tap saw %v", tapped)
	}
}

func TestRouter_PreservesOrderUnderConcurrency(t *testing.T) {
	r := NewRouter(testDevices(), nil, nil)
	a, _ := r.Bind("54:32:04:46:61:88")
	b, _ := r.Bind("PROP9")

	const n = 200
	var wg sync.WaitGroup
	for _, id := range []string{"54:32:04:46:61:88", "PROP9"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				r.Route(id, []byte("1"))
			}
		}(id)
	}
	wg.Wait()

	for _, in := range []*Inbox{a, b} {
		readings := in.Drain()
		if len(readings) != n {
			t.Fatalf("got %d readings, want %d", len(readings), n)
		}
		for i := 1; i < len(readings); i++ {
			if readings[i].Seq <= readings[i-1].Seq {
				t.Fatalf("order broken at %d", i)
			}
		}
	}
}

func TestRouter_SensorIDs(t *testing.T) {
	r := NewRouter(testDevices(), nil, nil)
	ids := r.SensorIDs()
	if len(ids) != 2 || ids[0] != "54:32:04:46:61:88" || ids[1] != "PROP9" {
		t.Errorf("SensorIDs() = %v", ids)
	}
}

func TestInbox_TakeRetainLastConcurrentAppend(t *testing.T) {
	in := NewInbox()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			in.Append(Reading{Raw: "1"})
		}
	}()

	taken := 0
	for i := 0; i < 100; i++ {
		if batch, ok := in.TakeRetainLast(2); ok {
			taken += len(batch) - 1
		}
	}
	wg.Wait()
	if batch, ok := in.TakeRetainLast(2); ok {
		taken += len(batch) - 1
	}

	// Batches after the first start with the carried seed, so summing
	// len-1 over all batches counts every reading but one.
	if taken != 999 || in.Len() != 1 {
		t.Errorf("taken=%d left=%d", taken, in.Len())
	}
}

func TestDevicesFromConfig(t *testing.T) {
	devices := DevicesFromConfig(nil)
	if len(devices) != 0 {
		t.Errorf("DevicesFromConfig(nil) = %v", devices)
	}
}
