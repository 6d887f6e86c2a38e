//go:build integration

package mqtt

import (
	"testing"
	"time"
)

// Integration tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func TestIntegration_SensorRoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = ""
	cfg.Auth.Password = ""

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	received := make(chan string, 4)
	err = client.Subscribe(Topics{}.AllSensors(), 1, func(topic string, payload []byte) error {
		id, _, _ := ParseDeviceTopic(topic)
		received <- id + "=" + string(payload)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	for _, v := range []string{"5", "7"} {
		if err := client.Publish(Topics{}.DeviceSensor("PROP3"), []byte(v), 1, false); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	for _, want := range []string{"PROP3=5", "PROP3=7"} {
		select {
		case got := <-received:
			if got != want {
				t.Errorf("received %q, want %q", got, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}
