package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Inception bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Panel     PanelConfig     `yaml:"panel"`
	Review    ReviewConfig    `yaml:"review"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// PanelConfig contains the Inception controller connection settings.
// Timeouts are in seconds.
type PanelConfig struct {
	Host           string `yaml:"host"`
	Token          string `yaml:"token"`
	RequestTimeout int    `yaml:"request_timeout"`
	MonitorTimeout int    `yaml:"monitor_timeout"`
	ReviewTimeout  int    `yaml:"review_timeout"`
}

// ReviewConfig contains review-event feed settings.
type ReviewConfig struct {
	Enabled             bool     `yaml:"enabled"`
	PageSize            int      `yaml:"page_size"`
	CategoryFilter      []string `yaml:"category_filter"`
	MessageTypeIDFilter int      `yaml:"message_type_id_filter"`

	// PollInterval is an optional pause in seconds between successful
	// polls. Zero polls again immediately.
	PollInterval int `yaml:"poll_interval"`

	// FlagsKey identifies the persisted on/off switches that gate
	// which review events are forwarded to consumers.
	FlagsKey string `yaml:"flags_key"`
}

// BridgeConfig contains MQTT bridge settings.
type BridgeConfig struct {
	TopicPrefix    string `yaml:"topic_prefix"`
	HealthInterval int    `yaml:"health_interval"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings. AccessTokenTTL is in minutes.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: INCEPTION_SECTION_KEY
// For example: INCEPTION_PANEL_TOKEN, INCEPTION_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Panel: PanelConfig{
			RequestTimeout: 10,
			MonitorTimeout: 70,
			ReviewTimeout:  30,
		},
		Review: ReviewConfig{
			Enabled:      true,
			PageSize:     50,
			PollInterval: 0,
			FlagsKey:     "review_events",
		},
		Bridge: BridgeConfig{
			TopicPrefix:    "inception",
			HealthInterval: 30,
		},
		Database: DatabaseConfig{
			Path:        "./data/inception.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "inception-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: INCEPTION_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Panel
	if v := os.Getenv("INCEPTION_PANEL_HOST"); v != "" {
		cfg.Panel.Host = v
	}
	if v := os.Getenv("INCEPTION_PANEL_TOKEN"); v != "" {
		cfg.Panel.Token = v
	}

	// Database
	if v := os.Getenv("INCEPTION_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("INCEPTION_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("INCEPTION_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("INCEPTION_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("INCEPTION_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("INCEPTION_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("INCEPTION_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Security - JWT secret (always override in production)
	if v := os.Getenv("INCEPTION_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Panel validation
	if c.Panel.Host == "" {
		errs = append(errs, "panel.host is required")
	} else if !strings.HasPrefix(c.Panel.Host, "http://") && !strings.HasPrefix(c.Panel.Host, "https://") {
		errs = append(errs, "panel.host must start with http:// or https://")
	}
	if c.Panel.Token == "" {
		errs = append(errs, "panel.token is required (set INCEPTION_PANEL_TOKEN environment variable)")
	}
	if c.Panel.RequestTimeout <= 0 || c.Panel.MonitorTimeout <= 0 || c.Panel.ReviewTimeout <= 0 {
		errs = append(errs, "panel timeouts must be positive")
	}

	// Review validation
	if c.Review.PageSize < 1 {
		errs = append(errs, "review.page_size must be at least 1")
	}
	if c.Review.PollInterval < 0 {
		errs = append(errs, "review.poll_interval cannot be negative")
	}
	if c.Review.MessageTypeIDFilter < 0 {
		errs = append(errs, "review.message_type_id_filter cannot be negative")
	}
	if c.Review.FlagsKey == "" {
		errs = append(errs, "review.flags_key is required")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.Bridge.TopicPrefix == "" {
		errs = append(errs, "bridge.topic_prefix is required")
	}

	// API validation
	if c.API.Enabled {
		if c.API.Port < 1 || c.API.Port > 65535 {
			errs = append(errs, "api.port must be between 1 and 65535")
		}

		// The API can actuate doors and disarm areas, so a weak secret
		// is never acceptable.
		const minJWTSecretLength = 32
		if c.Security.JWT.Secret == "" {
			errs = append(errs, "security.jwt.secret is required (set INCEPTION_JWT_SECRET environment variable)")
		} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
			errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetRequestTimeout returns the default panel request timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.Panel.RequestTimeout) * time.Second
}

// GetMonitorTimeout returns the long-poll timeout as a Duration.
func (c *Config) GetMonitorTimeout() time.Duration {
	return time.Duration(c.Panel.MonitorTimeout) * time.Second
}

// GetReviewTimeout returns the review feed request timeout as a Duration.
func (c *Config) GetReviewTimeout() time.Duration {
	return time.Duration(c.Panel.ReviewTimeout) * time.Second
}

// GetReviewPollInterval returns the pause between successful review polls.
func (c *Config) GetReviewPollInterval() time.Duration {
	return time.Duration(c.Review.PollInterval) * time.Second
}

// GetHealthInterval returns the bridge health report interval as a Duration.
func (c *Config) GetHealthInterval() time.Duration {
	return time.Duration(c.Bridge.HealthInterval) * time.Second
}
