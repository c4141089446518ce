package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sebr/inception-bridge/internal/inception"
	"github.com/sebr/inception-bridge/internal/infrastructure/mqtt"
)

// Bridge operation constants.
const (
	// callbackName registers the bridge on the client's callback streams.
	callbackName = "mqtt-bridge"

	// commandTimeout bounds one control request to the panel.
	commandTimeout = 10 * time.Second

	// defaultQoS is used for subscriptions and non-retained publishes.
	// Retained publishes use the broker connection's configured QoS.
	defaultQoS = 1
)

// MQTTClient is the subset of *mqtt.Client the bridge uses.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// Panel is the subset of *inception.Client the bridge uses.
type Panel interface {
	RegisterDataCallback(name string, fn inception.DataCallback) bool
	RegisterReviewEventCallback(name string, fn inception.ReviewEventCallback) bool
	UnregisterDataCallback(name string) bool
	UnregisterReviewEventCallback(name string) bool
	Control(ctx context.Context, kind inception.EntityKind, id, action string, timeSecs int) error
	Mirror() *inception.Data
	Connected() bool
	ReviewStopped() bool
}

// ReviewGate decides whether a review event category is forwarded.
// *flags.Gate satisfies it.
type ReviewGate interface {
	Allows(category string) bool
}

// Recorder stores published history. *influxdb.Client satisfies it.
type Recorder interface {
	WriteEntityState(snap inception.EntitySnapshot, at time.Time)
	WriteReviewEvent(ev inception.ReviewEvent, at time.Time)
}

// Logger is the logging interface used by the bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options holds configuration for creating a bridge.
type Options struct {
	// Panel is the connected (or about to connect) Inception client.
	Panel Panel

	// MQTT is the broker connection.
	MQTT MQTTClient

	// Topics builds topic names. The zero value uses the default prefix.
	Topics mqtt.Topics

	// Gate filters review events. Nil forwards every event.
	Gate ReviewGate

	// Recorder is optional history storage.
	Recorder Recorder

	// HealthInterval is the health report period. Default 30s.
	HealthInterval time.Duration

	// Version is reported in health messages.
	Version string

	// ClientID identifies the bridge in status messages.
	ClientID string

	// Logger is optional.
	Logger Logger
}

// Bridge republishes the panel mirror and review feed on MQTT and executes
// MQTT commands against the panel.
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	panel    Panel
	mqtt     MQTTClient
	topics   mqtt.Topics
	gate     ReviewGate
	recorder Recorder
	logger   Logger
	health   *HealthReporter

	states *StateTracker

	clientID string
	metrics  counters

	ctx    context.Context
	cancel context.CancelFunc

	// cmdMu orders wg.Add in handleCommand against wg.Wait in Stop.
	cmdMu    sync.Mutex
	stopping bool
	wg       sync.WaitGroup
	started  atomic.Bool
	stopOnce sync.Once

	now func() time.Time
}

type counters struct {
	statesPublished  atomic.Uint64
	reviewsPublished atomic.Uint64
	reviewsFiltered  atomic.Uint64
	commandsOK       atomic.Uint64
	commandsFailed   atomic.Uint64
	publishErrors    atomic.Uint64
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		StatesPublished:  c.statesPublished.Load(),
		ReviewsPublished: c.reviewsPublished.Load(),
		ReviewsFiltered:  c.reviewsFiltered.Load(),
		CommandsOK:       c.commandsOK.Load(),
		CommandsFailed:   c.commandsFailed.Load(),
		PublishErrors:    c.publishErrors.Load(),
	}
}

// New creates a bridge. Call Start to begin operation.
func New(opts Options) (*Bridge, error) {
	if opts.Panel == nil {
		return nil, errors.New("bridge: panel client is required")
	}
	if opts.MQTT == nil {
		return nil, errors.New("bridge: MQTT client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		panel:     opts.Panel,
		mqtt:      opts.MQTT,
		topics:    opts.Topics,
		gate:      opts.Gate,
		recorder:  opts.Recorder,
		logger:    logger,
		clientID:  opts.ClientID,
		states:    NewStateTracker(),
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
	}
	b.health = NewHealthReporter(HealthReporterConfig{
		Interval: opts.HealthInterval,
		Version:  opts.Version,
		Topic:    b.topics.BridgeHealth(),
		MQTT:     opts.MQTT,
		Panel:    opts.Panel,
		Metrics:  b.metrics.snapshot,
		Logger:   logger,
	})
	return b, nil
}

// Start subscribes to command topics, registers on the client's callback
// streams, publishes the current mirror (if loaded) and starts health
// reporting. Register before calling inception.Client.Connect so the
// initial mirror delivery is seen.
func (b *Bridge) Start(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return errors.New("bridge: already started")
	}

	if err := b.mqtt.Subscribe(b.topics.AllCommands(), defaultQoS, b.handleCommand); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logger.Info("subscribed to commands", "topic", b.topics.AllCommands())

	b.panel.RegisterDataCallback(callbackName, b.handleData)
	b.panel.RegisterReviewEventCallback(callbackName, b.handleReviewEvent)

	b.publishStatus("online")
	if data := b.panel.Mirror(); data != nil {
		b.handleData(data)
	}

	b.health.Start(ctx)
	b.logger.Info("bridge started", "status_topic", b.topics.BridgeStatus())
	return nil
}

// Stop unregisters the callbacks, waits for in-flight commands, stops
// health reporting and publishes offline. Safe to call more than once.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.panel.UnregisterDataCallback(callbackName)
		b.panel.UnregisterReviewEventCallback(callbackName)
		if err := b.mqtt.Unsubscribe(b.topics.AllCommands()); err != nil {
			b.logger.Debug("unsubscribe from commands failed", "error", err)
		}

		b.cmdMu.Lock()
		b.stopping = true
		b.cmdMu.Unlock()

		b.cancel()
		b.wg.Wait()
		b.health.Stop()
		b.publishStatus("offline")

		b.logger.Info("bridge stopped")
	})
}

// Metrics returns activity counters since start.
func (b *Bridge) Metrics() Metrics {
	return b.metrics.snapshot()
}

// handleData publishes every entity whose public state differs from the
// last published value.
func (b *Bridge) handleData(data *inception.Data) {
	at := b.now().UTC()

	for _, snap := range b.states.Changes(data) {
		if err := b.publishJSON(b.topics.State(string(snap.Kind), snap.Info.ID), newStateMessage(snap, at), true); err != nil {
			b.logger.Warn("state publish failed", "kind", snap.Kind, "id", snap.Info.ID, "error", err)
			b.states.Forget(snap)
			continue
		}
		b.metrics.statesPublished.Add(1)
		if b.recorder != nil {
			b.recorder.WriteEntityState(snap, at)
		}
	}
}

// handleReviewEvent normalises a raw event, applies the gate and publishes.
func (b *Bridge) handleReviewEvent(raw map[string]any) {
	ev := inception.NormalizeReviewEvent(raw)

	if b.gate != nil && !b.gate.Allows(ev.MessageCategory) {
		b.metrics.reviewsFiltered.Add(1)
		b.logger.Debug("review event filtered", "event_id", ev.EventID, "category", ev.MessageCategory)
		return
	}

	if err := b.publishJSON(b.topics.Review(ev.MessageCategory), ev, false); err != nil {
		b.logger.Warn("review publish failed", "event_id", ev.EventID, "error", err)
		return
	}
	b.metrics.reviewsPublished.Add(1)
	if b.recorder != nil {
		b.recorder.WriteReviewEvent(ev, b.now().UTC())
	}
}

// handleCommand parses a command and executes it without blocking the
// MQTT delivery goroutine.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	kindName, id, ok := b.topics.ParseCommand(topic)
	if !ok {
		return fmt.Errorf("unexpected command topic %q", topic)
	}

	var cmd CommandMessage
	decodeErr := json.Unmarshal(payload, &cmd)
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}

	resp := ResponseMessage{CommandID: cmd.ID, EntityID: id, Action: cmd.Action}
	if decodeErr != nil {
		b.respond(resp, fmt.Errorf("invalid command payload: %w", decodeErr))
		return nil
	}

	kind, err := inception.ParseKind(kindName)
	if err != nil {
		b.respond(resp, err)
		return nil
	}
	resp.Kind = kind

	b.cmdMu.Lock()
	if b.stopping {
		b.cmdMu.Unlock()
		b.respond(resp, errors.New("bridge stopping"))
		return nil
	}
	b.wg.Add(1)
	b.cmdMu.Unlock()

	go func() {
		defer b.wg.Done()

		ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
		defer cancel()

		b.logger.Info("executing command", "command_id", cmd.ID, "kind", kind, "id", id, "action", cmd.Action)
		b.respond(resp, b.panel.Control(ctx, kind, id, cmd.Action, cmd.TimeSecs))
	}()
	return nil
}

// respond publishes the outcome of a command.
func (b *Bridge) respond(resp ResponseMessage, err error) {
	resp.Status = CommandOK
	resp.Timestamp = b.now().UTC()
	if err != nil {
		resp.Status = CommandFailed
		resp.Error = err.Error()
		b.metrics.commandsFailed.Add(1)
		b.logger.Warn("command failed", "command_id", resp.CommandID, "error", err)
	} else {
		b.metrics.commandsOK.Add(1)
	}

	if pubErr := b.publishJSON(b.topics.Response(resp.CommandID), resp, false); pubErr != nil {
		b.logger.Warn("command response publish failed", "command_id", resp.CommandID, "error", pubErr)
	}
}

// publishStatus publishes a retained availability message.
func (b *Bridge) publishStatus(status string) {
	msg := mqtt.StatusPayload{Status: status, ClientID: b.clientID, Timestamp: b.now().UTC().Format(time.RFC3339)}
	if err := b.publishJSON(b.topics.BridgeStatus(), msg, true); err != nil {
		b.logger.Warn("status publish failed", "status", status, "error", err)
	}
}

func (b *Bridge) publishJSON(topic string, v any, retained bool) error {
	payload, err := json.Marshal(v)
	if err != nil {
		b.metrics.publishErrors.Add(1)
		return fmt.Errorf("encoding %s: %w", topic, err)
	}
	if retained {
		err = b.mqtt.PublishRetained(topic, payload)
	} else {
		err = b.mqtt.Publish(topic, payload, defaultQoS, false)
	}
	if err != nil {
		b.metrics.publishErrors.Add(1)
		return err
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
