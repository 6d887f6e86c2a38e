package mqtt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "hauntlogic-test",
		},
		Auth: config.MQTTAuthConfig{
			Username: "haunt",
			Password: "boo",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"sensor", topics.DeviceSensor("54:32:04:46:61:88"), "device/54:32:04:46:61:88/sensor"},
		{"actuator", topics.DeviceActuator("54:32:04:46:61:40"), "device/54:32:04:46:61:40/actuator"},
		{"all sensors", topics.AllSensors(), "device/+/sensor"},
		{"status", topics.SystemStatus(), "hauntlogic/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestParseDeviceTopic(t *testing.T) {
	tests := []struct {
		topic    string
		wantID   string
		wantLeaf string
		wantOK   bool
	}{
		{"device/PROP3/sensor", "PROP3", "sensor", true},
		{"device/54:32:04:46:61:88/actuator", "54:32:04:46:61:88", "actuator", true},
		{"device//sensor", "", "", false},
		{"device/PROP3", "", "", false},
		{"device/PROP3/sensor/extra", "", "", false},
		{"props/PROP3/sensor", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			id, leaf, ok := ParseDeviceTopic(tt.topic)
			if ok != tt.wantOK || id != tt.wantID || leaf != tt.wantLeaf {
				t.Errorf("ParseDeviceTopic(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.topic, id, leaf, ok, tt.wantID, tt.wantLeaf, tt.wantOK)
			}
		})
	}
}

// =============================================================================
// Option Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	opts := buildClientOptions(testConfig())

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want tcp://127.0.0.1:1883", opts.Servers)
	}
	if opts.ClientID != "hauntlogic-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "haunt" || opts.Password != "boo" {
		t.Error("credentials not applied")
	}
	if !opts.Order {
		t.Error("ordered delivery must be enabled")
	}
	if !opts.AutoReconnect {
		t.Error("auto-reconnect must be enabled")
	}
}

func TestBuildClientOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config not applied")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "hauntlogic-test")

	if !opts.WillEnabled {
		t.Fatal("will not enabled")
	}
	if opts.WillTopic != "hauntlogic/system/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("will should be retained")
	}
	if !strings.Contains(string(opts.WillPayload), `"reason":"unexpected_disconnect"`) {
		t.Errorf("WillPayload = %s", opts.WillPayload)
	}
}

// =============================================================================
// Client Tests (no broker)
// =============================================================================

func TestPublish_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		want    error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"bad qos", "device/a/actuator", []byte("x"), 3, ErrInvalidQoS},
		{"oversize", "device/a/actuator", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"disconnected", "device/a/actuator", []byte("S500"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.want) {
				t.Errorf("Publish() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}
	noop := func(string, []byte) error { return nil }

	if err := c.Subscribe("", 1, noop); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v", err)
	}
	if err := c.Subscribe("device/+/sensor", 5, noop); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("bad qos error = %v", err)
	}
	if err := c.Subscribe("device/+/sensor", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v", err)
	}
	if err := c.Subscribe("device/+/sensor", 1, noop); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v", err)
	}
	if c.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", c.SubscriptionCount())
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := &Client{}

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

func TestCloseNil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// fakeMessage implements pahomqtt.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *recordingLogger) Info(string, ...any) {}
func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}
func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func TestWrapHandler_RecoversPanic(t *testing.T) {
	logger := &recordingLogger{}
	c := &Client{}
	c.SetLogger(logger)

	h := c.wrapHandler(func(string, []byte) error {
		panic("bad board")
	})
	h(nil, fakeMessage{topic: "device/a/sensor", payload: []byte("1")})

	if len(logger.errors) != 1 {
		t.Fatalf("errors logged = %d, want 1", len(logger.errors))
	}
}

func TestWrapHandler_LogsError(t *testing.T) {
	logger := &recordingLogger{}
	c := &Client{}
	c.SetLogger(logger)

	var gotTopic, gotPayload string
	h := c.wrapHandler(func(topic string, payload []byte) error {
		gotTopic, gotPayload = topic, string(payload)
		return errors.New("nope")
	})
	h(nil, fakeMessage{topic: "device/a/sensor", payload: []byte("42")})

	if gotTopic != "device/a/sensor" || gotPayload != "42" {
		t.Errorf("handler saw (%q, %q)", gotTopic, gotPayload)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warnings logged = %d, want 1", len(logger.warns))
	}
}
