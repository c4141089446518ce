package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sebr/inception-bridge/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "inception-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// mockLogger records handler errors and panics.
type mockLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (m *mockLogger) Error(msg string, _ ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) Warn(msg string, _ ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	topics := NewTopics("site/inception/")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"State", topics.State("door", "d1"), "site/inception/state/door/d1"},
		{"Review", topics.Review("Access"), "site/inception/review/Access"},
		{"Command", topics.Command("area", "a1"), "site/inception/command/area/a1"},
		{"Response", topics.Response("cmd-1"), "site/inception/response/cmd-1"},
		{"BridgeStatus", topics.BridgeStatus(), "site/inception/bridge/status"},
		{"BridgeHealth", topics.BridgeHealth(), "site/inception/bridge/health"},
		{"AllCommands", topics.AllCommands(), "site/inception/command/+/+"},
		{"AllStates", topics.AllStates(), "site/inception/state/#"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestTopics_DefaultPrefix(t *testing.T) {
	if got := NewTopics("").BridgeStatus(); got != "inception/bridge/status" {
		t.Errorf("NewTopics(\"\").BridgeStatus() = %q", got)
	}
	if got := (Topics{}).State("input", "i1"); got != "inception/state/input/i1" {
		t.Errorf("Topics{}.State() = %q", got)
	}
}

func TestTopics_ParseCommand(t *testing.T) {
	topics := NewTopics("inception")

	tests := []struct {
		topic    string
		wantKind string
		wantID   string
		wantOK   bool
	}{
		{"inception/command/door/d1", "door", "d1", true},
		{"inception/command/area/a-1", "area", "a-1", true},
		{"inception/command/door", "", "", false},
		{"inception/command/door/", "", "", false},
		{"inception/command/door/d1/extra", "", "", false},
		{"inception/state/door/d1", "", "", false},
		{"other/command/door/d1", "", "", false},
	}
	for _, tt := range tests {
		kind, id, ok := topics.ParseCommand(tt.topic)
		if kind != tt.wantKind || id != tt.wantID || ok != tt.wantOK {
			t.Errorf("ParseCommand(%q) = %q, %q, %v; want %q, %q, %v",
				tt.topic, kind, id, ok, tt.wantKind, tt.wantID, tt.wantOK)
		}
	}
}

// =============================================================================
// Option Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "bridge"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want tcp://127.0.0.1:1883", opts.Servers)
	}
	if opts.ClientID != "inception-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "bridge" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if !opts.CleanSession || !opts.AutoReconnect {
		t.Error("CleanSession and AutoReconnect should be enabled")
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
		t.Error("TLS 1.2 minimum not configured")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, NewTopics("inception"), "inception-test")

	if !opts.WillEnabled {
		t.Fatal("LWT not enabled")
	}
	if opts.WillTopic != "inception/bridge/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	if !opts.WillRetained || opts.WillQos != 1 {
		t.Errorf("WillRetained = %v, WillQos = %d", opts.WillRetained, opts.WillQos)
	}

	var payload StatusPayload
	if err := json.Unmarshal(opts.WillPayload, &payload); err != nil {
		t.Fatalf("LWT payload is not JSON: %v", err)
	}
	if payload.Status != "offline" || payload.Reason != "unexpected_disconnect" || payload.ClientID != "inception-test" {
		t.Errorf("LWT payload = %+v", payload)
	}
}

func TestStatusPayload(t *testing.T) {
	var payload StatusPayload
	if err := json.Unmarshal([]byte(statusPayload("online", `quote"id`, "")), &payload); err != nil {
		t.Fatalf("statusPayload() is not JSON: %v", err)
	}
	if payload.Status != "online" || payload.ClientID != `quote"id` || payload.Reason != "" {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Timestamp == "" {
		t.Error("timestamp missing")
	}
}

// =============================================================================
// Disconnected Client Tests
// =============================================================================

func disconnectedClient() *Client {
	return &Client{cfg: testConfig(), subscriptions: make(map[string]subscription)}
}

func TestIsConnected_InitialState(t *testing.T) {
	if (&Client{}).IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestCloseNil(t *testing.T) {
	if err := (&Client{}).Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

func TestPublishValidation(t *testing.T) {
	c := disconnectedClient()

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		want    error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "t", []byte("x"), 3, ErrInvalidQoS},
		{"payload too large", "t", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "t", []byte("x"), 1, ErrNotConnected},
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

func TestPublishRetained_Validation(t *testing.T) {
	c := disconnectedClient()

	if err := c.PublishRetained("", []byte("x")); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("PublishRetained() empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.PublishRetained("inception/bridge/status", []byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishRetained() error = %v, want ErrNotConnected", err)
	}
}

func TestPublishJSON_EncodeError(t *testing.T) {
	err := disconnectedClient().PublishJSON("t", map[string]any{"f": func() {}}, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("PublishJSON() error = %v, want ErrPublishFailed", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := disconnectedClient()
	handler := func(string, []byte) error { return nil }

	if err := c.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v", err)
	}
	if err := c.Subscribe("t", 5, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("bad qos error = %v", err)
	}
	if err := c.Subscribe("t", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v", err)
	}
	if err := c.Subscribe("t", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v", err)
	}
	if err := c.Unsubscribe("t"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() error = %v", err)
	}
	if c.SubscriptionCount() != 0 || c.HasSubscription("t") {
		t.Error("failed subscription was tracked")
	}
}

func TestHealthCheck(t *testing.T) {
	c := disconnectedClient()
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestDispatch_RecoversAndLogs(t *testing.T) {
	c := disconnectedClient()
	logger := &mockLogger{}
	c.SetLogger(logger)

	c.dispatch(func(string, []byte) error { panic("boom") }, "t", nil)
	c.dispatch(func(string, []byte) error { return errors.New("bad payload") }, "t", nil)

	var got []byte
	c.dispatch(func(_ string, p []byte) error { got = p; return nil }, "t", []byte("ok"))

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.errors) != 1 || !strings.Contains(logger.errors[0], "panic") {
		t.Errorf("errors = %v, want one panic entry", logger.errors)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want one handler error", logger.warns)
	}
	if string(got) != "ok" {
		t.Errorf("payload = %q, want ok", got)
	}
}

func TestCallbacks(t *testing.T) {
	c := disconnectedClient()

	var lost error
	c.SetOnDisconnect(func(err error) { lost = err })
	c.handleDisconnect(errors.New("network down"))
	if lost == nil || lost.Error() != "network down" {
		t.Errorf("OnDisconnect got %v", lost)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after disconnect")
	}
}
