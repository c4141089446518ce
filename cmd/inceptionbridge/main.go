// Inception Bridge
//
// This is the main entry point for the Inception bridge. It keeps a live
// mirror of an Inner Range Inception controller's doors, inputs, outputs
// and areas, forwards the panel's review events, and exposes both over
// MQTT and an authenticated HTTP/WebSocket API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sebr/inception-bridge/internal/api"
	"github.com/sebr/inception-bridge/internal/bridge"
	"github.com/sebr/inception-bridge/internal/flags"
	"github.com/sebr/inception-bridge/internal/inception"
	"github.com/sebr/inception-bridge/internal/infrastructure/config"
	"github.com/sebr/inception-bridge/internal/infrastructure/database"
	"github.com/sebr/inception-bridge/internal/infrastructure/influxdb"
	"github.com/sebr/inception-bridge/internal/infrastructure/logging"
	"github.com/sebr/inception-bridge/internal/infrastructure/mqtt"
	"github.com/sebr/inception-bridge/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// configEnv overrides the default configuration path.
const configEnv = "INCEPTION_CONFIG"

// healthCheckTimeout bounds the startup health check.
const healthCheckTimeout = 15 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the parsed command-line flags.
type options struct {
	configPath  string
	issueToken  string
	migrateDown bool
	showVersion bool
}

// parseFlags parses the command line.
//
// Parameters:
//   - args: Arguments without the program name
//   - output: Destination for usage text
//
// Returns:
//   - options: Parsed flags
//   - error: If the arguments are invalid (flag.ErrHelp for -h)
func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("inceptionbridge", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", getConfigPath(), "path to the YAML configuration file")
	fs.StringVar(&opts.issueToken, "issue-token", "", "print an API bearer token for `subject` and exit")
	fs.BoolVar(&opts.migrateDown, "migrate-down", false, "roll back the most recent database migration and exit")
	fs.BoolVar(&opts.showVersion, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Command-line arguments without the program name
//   - stdout: Destination for -version, -issue-token and -migrate-down output
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "inceptionbridge %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	// Use default logger until config is loaded
	log := logging.Default()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.issueToken != "" {
		return issueToken(cfg, opts.issueToken, stdout)
	}

	log.Info("starting Inception bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)
	log.Info("configuration loaded", "path", opts.configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if opts.migrateDown {
		return migrateDown(ctx, db, stdout)
	}

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Feature flags gating the review feed
	flagRepo := flags.NewSQLiteRepository(db.DB)
	gate, err := flags.NewGate(ctx, flagRepo, cfg.Review.FlagsKey)
	if err != nil {
		return fmt.Errorf("loading feature flags: %w", err)
	}
	log.Info("feature flags loaded",
		"key", gate.Key(),
		"global", gate.Flags().Global,
		"enabled", gate.Flags().EnabledCategories(),
	)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	topics := mqtt.NewTopics(cfg.Bridge.TopicPrefix)
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, topics)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"prefix", cfg.Bridge.TopicPrefix,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Panel client
	client, err := inception.New(inception.Options{
		Host:           cfg.Panel.Host,
		Token:          cfg.Panel.Token,
		RequestTimeout: cfg.GetRequestTimeout(),
		MonitorTimeout: cfg.GetMonitorTimeout(),
		ReviewTimeout:  cfg.GetReviewTimeout(),
		Review: inception.ReviewOptions{
			Enabled:             cfg.Review.Enabled,
			PageSize:            cfg.Review.PageSize,
			CategoryFilter:      cfg.Review.CategoryFilter,
			MessageTypeIDFilter: cfg.Review.MessageTypeIDFilter,
			PollInterval:        cfg.GetReviewPollInterval(),
		},
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("creating panel client: %w", err)
	}
	if authErr := client.Authenticate(ctx); authErr != nil {
		_ = client.Close()
		return fmt.Errorf("authenticating with panel: %w", authErr)
	}
	log.Info("panel authenticated", "host", cfg.Panel.Host)

	// Consumers register their callbacks before Connect so the first
	// mirror delivery reaches all of them.
	var mqttBridge *bridge.Bridge
	if mqttClient != nil {
		mqttBridge, err = startBridge(ctx, cfg, client, mqttClient, topics, gate, influxClient, log)
		if err != nil {
			_ = client.Close()
			return fmt.Errorf("starting MQTT bridge: %w", err)
		}
		defer func() {
			log.Info("stopping MQTT bridge")
			mqttBridge.Stop()
		}()
	}

	if cfg.API.Enabled {
		apiServer, apiErr := startAPI(ctx, cfg, db, client, flagRepo, gate, mqttClient, mqttBridge, log)
		if apiErr != nil {
			_ = client.Close()
			return fmt.Errorf("starting API server: %w", apiErr)
		}
		defer func() {
			log.Info("stopping API server")
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error stopping API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API server disabled")
	}

	if connectErr := client.Connect(ctx); connectErr != nil {
		_ = client.Close()
		return fmt.Errorf("connecting to panel: %w", connectErr)
	}
	defer func() {
		log.Info("closing panel client")
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing panel client", "error", closeErr)
		}
	}()
	log.Info("panel connected", "review_feed", cfg.Review.Enabled)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
	case <-client.Done():
		log.Warn("panel client stopped, shutting down")
	}

	// Deferred calls run in reverse order: panel client, API server,
	// MQTT bridge, InfluxDB, MQTT, database.
	log.Info("Inception bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses INCEPTION_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv(configEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

// migrateDown rolls back the newest applied migration and reports which
// one it was.
func migrateDown(ctx context.Context, db *database.DB, stdout io.Writer) error {
	applied, _, err := db.MigrationStatus(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	if len(applied) == 0 {
		fmt.Fprintln(stdout, "no migrations applied")
		return nil
	}

	if err := db.MigrateDown(ctx, migrations.FS); err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}
	fmt.Fprintf(stdout, "rolled back migration %s\n", applied[len(applied)-1].Version)
	return nil
}

// issueToken prints a signed API bearer token for subject.
//
// Parameters:
//   - cfg: Loaded configuration holding the signing secret and TTL
//   - subject: Token subject, recorded in API audit logs
//   - stdout: Destination for the token
//
// Returns:
//   - error: If signing fails
func issueToken(cfg *config.Config, subject string, stdout io.Writer) error {
	ttl := time.Duration(cfg.Security.JWT.AccessTokenTTL) * time.Minute
	token, err := api.IssueToken(cfg.Security.JWT.Secret, subject, ttl)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}
	fmt.Fprintln(stdout, token)
	return nil
}

// startBridge creates and starts the MQTT bridge.
//
// Parameters:
//   - ctx: Context for the bridge lifetime
//   - cfg: Application configuration
//   - client: Panel client (not yet connected)
//   - mqttClient: Connected MQTT client
//   - topics: Topic builder shared with the MQTT client
//   - gate: Review event gate
//   - influxClient: History recorder (may be nil if disabled)
//   - log: Logger instance
//
// Returns:
//   - *bridge.Bridge: Running bridge
//   - error: If the bridge fails to start
func startBridge(ctx context.Context, cfg *config.Config, client *inception.Client, mqttClient *mqtt.Client,
	topics mqtt.Topics, gate *flags.Gate, influxClient *influxdb.Client, log *logging.Logger) (*bridge.Bridge, error) {
	opts := bridge.Options{
		Panel:          client,
		MQTT:           mqttClient,
		Topics:         topics,
		Gate:           gate,
		HealthInterval: cfg.GetHealthInterval(),
		Version:        version,
		ClientID:       cfg.MQTT.Broker.ClientID,
		Logger:         log,
	}
	// A nil *influxdb.Client must not become a non-nil Recorder.
	if influxClient != nil {
		opts.Recorder = influxClient
	}

	b, err := bridge.New(opts)
	if err != nil {
		return nil, err
	}
	if err := b.Start(ctx); err != nil {
		return nil, err
	}
	log.Info("MQTT bridge started", "prefix", cfg.Bridge.TopicPrefix)
	return b, nil
}

// startAPI creates and starts the HTTP API server.
//
// Parameters:
//   - ctx: Context for the server lifetime
//   - cfg: Application configuration
//   - db: Open database, reported by the metrics endpoint
//   - client: Panel client
//   - flagRepo: Feature flag storage
//   - gate: Live review event gate
//   - mqttClient: MQTT client (may be nil if disabled)
//   - mqttBridge: MQTT bridge (may be nil if disabled)
//   - log: Logger instance
//
// Returns:
//   - *api.Server: Listening server
//   - error: If the server fails to start
func startAPI(ctx context.Context, cfg *config.Config, db *database.DB, client *inception.Client,
	flagRepo flags.Repository, gate *flags.Gate, mqttClient *mqtt.Client, mqttBridge *bridge.Bridge,
	log *logging.Logger) (*api.Server, error) {
	deps := api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Panel:    client,
		Flags:    flagRepo,
		Gate:     gate,
		DB:       db.DB,
		Version:  version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	if mqttBridge != nil {
		deps.Metrics = mqttBridge.Metrics
	}

	srv, err := api.New(deps)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(ctx); err != nil {
		return nil, err
	}
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)
	return srv, nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// The panel was authenticated and its mirror loaded by Connect.
	return nil
}
