package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebr/inception-bridge/internal/api"
	"github.com/sebr/inception-bridge/internal/infrastructure/config"
	"github.com/sebr/inception-bridge/internal/infrastructure/database"
	"github.com/sebr/inception-bridge/migrations"
)

const testSecret = "test-secret-for-development-only-0123456789"

// fakePanel serves just enough of the controller API for startup: the
// token check, empty summaries and a monitor long-poll that never answers.
func fakePanel(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		switch {
		case r.URL.Path == "/api/v1/monitor-updates":
			<-r.Context().Done()
		case strings.HasSuffix(r.URL.Path, "/summary"):
			w.Write([]byte(`{}`)) //nolint:errcheck // test handler
		default:
			w.Write([]byte(`[]`)) //nolint:errcheck // test handler
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// writeConfig writes a config with MQTT and InfluxDB disabled.
func writeConfig(t *testing.T, panelURL string, apiPort int) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	apiEnabled := apiPort > 0
	if !apiEnabled {
		apiPort = 8080
	}

	configContent := fmt.Sprintf(`
panel:
  host: %q
  token: "test-token"
  request_timeout: 2
  monitor_timeout: 5

review:
  enabled: false

database:
  path: %q
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stderr

api:
  enabled: %t
  host: "127.0.0.1"
  port: %d

security:
  jwt:
    secret: %q
    access_token_ttl: 30
`, panelURL, filepath.Join(tmpDir, "test.db"), apiEnabled, apiPort, testSecret)

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestParseFlags(t *testing.T) {
	t.Setenv(configEnv, "")

	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{"defaults", nil, options{configPath: defaultConfigPath}, false},
		{"config", []string{"-config", "/etc/inception.yaml"}, options{configPath: "/etc/inception.yaml"}, false},
		{"issue token", []string{"-issue-token", "homeassistant"}, options{configPath: defaultConfigPath, issueToken: "homeassistant"}, false},
		{"migrate down", []string{"-migrate-down"}, options{configPath: defaultConfigPath, migrateDown: true}, false},
		{"version", []string{"-version"}, options{configPath: defaultConfigPath, showVersion: true}, false},
		{"unknown flag", []string{"-verbose"}, options{}, true},
		{"extra argument", []string{"serve"}, options{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv(configEnv, "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv(configEnv, expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-version"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("output %q does not contain version %q", out.String(), version)
	}
}

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-h"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "-issue-token") {
		t.Errorf("usage %q does not list -issue-token", out.String())
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"-config", "/nonexistent/path/config.yaml"}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want loading config failure", err)
	}
}

func TestRun_IssueToken(t *testing.T) {
	configPath := writeConfig(t, "http://127.0.0.1:1", 0)

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-config", configPath, "-issue-token", "homeassistant"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	subject, err := api.ValidateToken(testSecret, strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if subject != "homeassistant" {
		t.Errorf("subject = %q, want homeassistant", subject)
	}
}

func TestRun_MigrateDown(t *testing.T) {
	configPath := writeConfig(t, "http://127.0.0.1:1", 0)
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	db.Close()

	var out bytes.Buffer
	if err := run(ctx, []string{"-config", configPath, "-migrate-down"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "rolled back migration 20260301_120000") {
		t.Errorf("output = %q, want rolled back migration", out.String())
	}

	out.Reset()
	if err := run(ctx, []string{"-config", configPath, "-migrate-down"}, &out); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	if !strings.Contains(out.String(), "no migrations applied") {
		t.Errorf("output = %q, want no migrations applied", out.String())
	}
}

func TestRun_PanelRejectsToken(t *testing.T) {
	panel := fakePanel(t, http.StatusUnauthorized)
	configPath := writeConfig(t, panel.URL, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"-config", configPath}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("run() should fail when the panel rejects the token")
	}
	if !strings.Contains(err.Error(), "authenticating with panel") {
		t.Errorf("error = %v, want authentication failure", err)
	}
}

func TestRun_SuccessfulStartupAndShutdown(t *testing.T) {
	panel := fakePanel(t, http.StatusOK)
	port := freePort(t)
	configPath := writeConfig(t, panel.URL, port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, []string{"-config", configPath}, &bytes.Buffer{})
	}()

	healthURL := fmt.Sprintf("http://127.0.0.1:%d/api/v1/health", port)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(healthURL) //nolint:noctx // test polling
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("API did not become healthy: %v", err)
		}
		select {
		case err := <-errCh:
			t.Fatalf("run() exited early: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not return after cancellation")
	}
}

func TestRun_ContextCancelledDuringStartup(t *testing.T) {
	panel := fakePanel(t, http.StatusOK)
	configPath := writeConfig(t, panel.URL, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := run(ctx, []string{"-config", configPath}, &bytes.Buffer{}); err == nil {
		t.Error("run() should fail with a cancelled context")
	}
}
