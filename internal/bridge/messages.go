package bridge

import (
	"time"

	"github.com/sebr/inception-bridge/internal/inception"
)

// StateMessage is the retained payload on a state topic.
type StateMessage struct {
	Kind         inception.EntityKind `json:"kind"`
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	ReportingID  string               `json:"reporting_id"`
	PublicState  uint32               `json:"public_state"`
	Flags        []string             `json:"flags"`
	Descriptions []string             `json:"descriptions"`
	AlarmState   inception.AlarmState `json:"alarm_state,omitempty"`
	Timestamp    time.Time            `json:"timestamp"`
}

func newStateMessage(snap inception.EntitySnapshot, at time.Time) StateMessage {
	return StateMessage{
		Kind:         snap.Kind,
		ID:           snap.Info.ID,
		Name:         snap.Info.Name,
		ReportingID:  snap.Info.ReportingID,
		PublicState:  snap.PublicState,
		Flags:        snap.Flags,
		Descriptions: snap.Descriptions,
		AlarmState:   snap.AlarmState,
		Timestamp:    at,
	}
}

// CommandMessage is received on a command topic. Kind and entity id come
// from the topic.
type CommandMessage struct {
	// ID correlates the response. A UUID is generated when empty.
	ID string `json:"id,omitempty"`

	// Action is one of inception.Actions for the topic's kind.
	Action string `json:"action"`

	// TimeSecs is the unlock duration for timed_unlock.
	TimeSecs int `json:"time_secs,omitempty"`
}

// CommandStatus is the outcome reported in a ResponseMessage.
type CommandStatus string

// Command outcomes.
const (
	CommandOK     CommandStatus = "ok"
	CommandFailed CommandStatus = "error"
)

// ResponseMessage is published on the response topic after a command.
type ResponseMessage struct {
	CommandID string               `json:"command_id"`
	Kind      inception.EntityKind `json:"kind,omitempty"`
	EntityID  string               `json:"entity_id,omitempty"`
	Action    string               `json:"action,omitempty"`
	Status    CommandStatus        `json:"status"`
	Error     string               `json:"error,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// HealthStatus is the bridge condition in a HealthMessage.
type HealthStatus string

// Health states.
const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is the retained payload on the bridge health topic.
type HealthMessage struct {
	Status         HealthStatus   `json:"status"`
	Reason         string         `json:"reason,omitempty"`
	Version        string         `json:"version"`
	PanelConnected bool           `json:"panel_connected"`
	ReviewStopped  bool           `json:"review_stopped"`
	Entities       map[string]int `json:"entities"`
	Metrics        Metrics        `json:"metrics"`
	UptimeSeconds  int64          `json:"uptime_seconds"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Metrics counts bridge activity since start.
type Metrics struct {
	StatesPublished  uint64 `json:"states_published"`
	ReviewsPublished uint64 `json:"reviews_published"`
	ReviewsFiltered  uint64 `json:"reviews_filtered"`
	CommandsOK       uint64 `json:"commands_ok"`
	CommandsFailed   uint64 `json:"commands_failed"`
	PublishErrors    uint64 `json:"publish_errors"`
}
