package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sebr/inception-bridge/internal/inception"
)

// defaultHealthInterval applies when no interval is configured.
const defaultHealthInterval = 30 * time.Second

// HealthReporter publishes a retained HealthMessage at a fixed interval.
type HealthReporter struct {
	interval  time.Duration
	version   string
	topic     string
	mqtt      MQTTClient
	panel     Panel
	metrics   func() Metrics
	logger    Logger
	startTime time.Time

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// HealthReporterConfig holds configuration for the health reporter.
type HealthReporterConfig struct {
	// Interval is how often to publish. Default: 30 seconds.
	Interval time.Duration

	Version string
	Topic   string
	MQTT    MQTTClient
	Panel   Panel

	// Metrics supplies the counters included in each report.
	Metrics func() Metrics

	Logger Logger
}

// NewHealthReporter creates a reporter. Call Start to begin reporting.
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = func() Metrics { return Metrics{} }
	}
	return &HealthReporter{
		interval:  interval,
		version:   cfg.Version,
		topic:     cfg.Topic,
		mqtt:      cfg.MQTT,
		panel:     cfg.Panel,
		metrics:   metrics,
		logger:    logger,
		startTime: time.Now(),
		done:      make(chan struct{}),
	}
}

// Start begins periodic reporting until ctx is cancelled or Stop is called.
func (h *HealthReporter) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.reportLoop(ctx)
}

// Stop ends reporting and publishes a final stopping status. Safe to call
// multiple times.
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		if err := h.publish(h.Report(HealthStopping, "")); err != nil {
			h.logger.Debug("final health publish failed", "error", err)
		}
	})
}

// PublishNow evaluates and publishes the current health.
func (h *HealthReporter) PublishNow() error {
	status, reason := h.determineStatus()
	return h.publish(h.Report(status, reason))
}

func (h *HealthReporter) reportLoop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	if err := h.PublishNow(); err != nil {
		h.logger.Warn("failed to publish initial health", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if err := h.PublishNow(); err != nil {
				h.logger.Warn("failed to publish health", "error", err)
			}
		}
	}
}

// determineStatus reports degraded while the broker or the panel polling
// loops are down.
func (h *HealthReporter) determineStatus() (HealthStatus, string) {
	if h.mqtt == nil || !h.mqtt.IsConnected() {
		return HealthDegraded, "MQTT disconnected"
	}
	if h.panel == nil || !h.panel.Connected() {
		return HealthDegraded, "panel monitor not running"
	}
	return HealthHealthy, ""
}

// Report builds a HealthMessage with the given status.
func (h *HealthReporter) Report(status HealthStatus, reason string) HealthMessage {
	msg := HealthMessage{
		Status:        status,
		Reason:        reason,
		Version:       h.version,
		Entities:      make(map[string]int, len(inception.Kinds)),
		Metrics:       h.metrics(),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now().UTC(),
	}
	if h.panel != nil {
		msg.PanelConnected = h.panel.Connected()
		msg.ReviewStopped = h.panel.ReviewStopped()
		if data := h.panel.Mirror(); data != nil {
			for _, kind := range inception.Kinds {
				snaps, _ := data.Entities(kind) //nolint:errcheck // kinds are fixed
				msg.Entities[string(kind)] = len(snaps)
			}
		}
	}
	return msg
}

func (h *HealthReporter) publish(msg HealthMessage) error {
	if h.mqtt == nil {
		return nil
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return h.mqtt.PublishRetained(h.topic, payload)
}
