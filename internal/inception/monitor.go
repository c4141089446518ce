package inception

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	// monitorPath is the combined long-poll endpoint.
	monitorPath = "/monitor-updates"

	// monitorRequestType is the RequestType of every monitor request.
	monitorRequestType = "MonitorEntityStates"

	// defaultCursor is sent for a kind that has never been updated.
	defaultCursor = "0"

	// cycleErrorDelay pauses the loop after a failed cycle.
	cycleErrorDelay = 5 * time.Second
)

// Monitor request ids.
const (
	InputStateRequestID  = "InputStateRequest"
	DoorStateRequestID   = "DoorStateRequest"
	OutputStateRequestID = "OutputStateRequest"
	AreaStateRequestID   = "AreaStateRequest"
)

// monitorTarget pairs a request id with the state type it watches.
type monitorTarget struct {
	requestID string
	stateType string
	kind      EntityKind
}

// monitorTargets is the fixed request set, in the order sent.
var monitorTargets = []monitorTarget{
	{requestID: InputStateRequestID, stateType: "InputState", kind: KindInput},
	{requestID: DoorStateRequestID, stateType: "DoorState", kind: KindDoor},
	{requestID: OutputStateRequestID, stateType: "OutputState", kind: KindOutput},
	{requestID: AreaStateRequestID, stateType: "AreaState", kind: KindArea},
}

// CursorStore holds the last update time reported for each monitor request.
type CursorStore interface {
	// Cursor returns the stored value for requestID, or false when unset.
	Cursor(requestID string) (json.RawMessage, bool)

	// SetCursor replaces the stored value for requestID.
	SetCursor(requestID string, value json.RawMessage)
}

// MemoryCursorStore is an in-memory CursorStore.
//
// Thread Safety: All methods are safe for concurrent use.
type MemoryCursorStore struct {
	mu      sync.Mutex
	cursors map[string]json.RawMessage
}

// NewMemoryCursorStore creates an empty store.
func NewMemoryCursorStore() *MemoryCursorStore {
	return &MemoryCursorStore{cursors: make(map[string]json.RawMessage)}
}

// Cursor implements CursorStore.
func (s *MemoryCursorStore) Cursor(requestID string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cursors[requestID]
	return v, ok
}

// SetCursor implements CursorStore.
func (s *MemoryCursorStore) SetCursor(requestID string, value json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[requestID] = append(json.RawMessage(nil), value...)
}

// MonitorInput is the InputData of a monitor request.
type MonitorInput struct {
	StateType       string          `json:"stateType"`
	TimeSinceUpdate json.RawMessage `json:"timeSinceUpdate"`
}

// MonitorRequest is one element of the /monitor-updates request body.
type MonitorRequest struct {
	ID          string       `json:"ID"`
	RequestType string       `json:"RequestType"`
	InputData   MonitorInput `json:"InputData"`
}

// StateUpdate is one element of a monitor result's stateData.
type StateUpdate struct {
	ID          string
	ReportingID string
	PublicState uint32

	// ExtraFields holds every unmodelled key. stateValue is dropped.
	ExtraFields map[string]any
}

// UnmarshalJSON decodes the known fields and collects the rest.
func (u *StateUpdate) UnmarshalJSON(data []byte) error {
	fields, extra, err := splitFields(data, "ID", "ReportingID", "PublicState", "stateValue")
	if err != nil {
		return err
	}
	var out StateUpdate
	if out.ID, err = stringValue(fields["ID"]); err != nil {
		return fmt.Errorf("ID: %w", err)
	}
	if out.ReportingID, err = stringValue(fields["ReportingID"]); err != nil {
		return fmt.Errorf("ReportingID: %w", err)
	}
	if out.PublicState, err = uint32Value(fields["PublicState"]); err != nil {
		return fmt.Errorf("PublicState: %w", err)
	}
	out.ExtraFields = extra
	*u = out
	return nil
}

// MonitorResult is the Result of a monitor response.
type MonitorResult struct {
	UpdateTime json.RawMessage `json:"updateTime"`
	StateData  []StateUpdate   `json:"stateData"`
}

// MonitorResponse is the /monitor-updates response. It answers exactly one
// of the requests sent.
type MonitorResponse struct {
	ID     string        `json:"ID"`
	Result MonitorResult `json:"Result"`
}

// MonitorConfig holds the dependencies of a Monitor.
type MonitorConfig struct {
	API     Requester
	Data    *Data
	Cursors CursorStore
	Timeout time.Duration

	// OnCycle is called with the mirror after every completed cycle.
	OnCycle func(*Data)

	Logger Logger
}

// Monitor runs the long-poll entity-state loop. It is the only writer of
// the mirror.
type Monitor struct {
	api      Requester
	data     *Data
	cursors  CursorStore
	timeout  time.Duration
	onCycle  func(*Data)
	logger   Logger
	errDelay time.Duration
}

// NewMonitor creates a monitor.
func NewMonitor(cfg MonitorConfig) *Monitor {
	m := &Monitor{
		api:      cfg.API,
		data:     cfg.Data,
		cursors:  cfg.Cursors,
		timeout:  orDefault(cfg.Timeout, DefaultMonitorTimeout),
		onCycle:  cfg.OnCycle,
		logger:   cfg.Logger,
		errDelay: cycleErrorDelay,
	}
	if m.cursors == nil {
		m.cursors = NewMemoryCursorStore()
	}
	if m.logger == nil {
		m.logger = nopLogger{}
	}
	return m
}

// Requests builds the four monitor requests from the cursor store.
func (m *Monitor) Requests() []MonitorRequest {
	reqs := make([]MonitorRequest, 0, len(monitorTargets))
	for _, t := range monitorTargets {
		cursor, ok := m.cursors.Cursor(t.requestID)
		if !ok || isNull(cursor) {
			cursor = json.RawMessage(`"` + defaultCursor + `"`)
		}
		reqs = append(reqs, MonitorRequest{
			ID:          t.requestID,
			RequestType: monitorRequestType,
			InputData: MonitorInput{
				StateType:       t.stateType,
				TimeSinceUpdate: cursor,
			},
		})
	}
	return reqs
}

// Cycle performs one long-poll round trip and applies the result to the
// mirror. A timeout, an empty response or one missing ID or Result returns
// nil. Transport failures and an undecodable ID or Result are returned.
func (m *Monitor) Cycle(ctx context.Context) error {
	raw, err := m.api.Request(ctx, http.MethodPost, monitorPath, m.Requests(), m.timeout)
	if err != nil {
		if IsTimeout(err) {
			m.logger.Debug("monitor long-poll timed out")
			return nil
		}
		return err
	}

	resp, ok, err := m.decode(raw)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var target *monitorTarget
	for i := range monitorTargets {
		if monitorTargets[i].requestID == resp.ID {
			target = &monitorTargets[i]
			break
		}
	}
	if target == nil {
		m.logger.Error("monitor response has unknown request id", "id", resp.ID)
		return nil
	}

	applied := m.apply(target.kind, resp.Result.StateData)
	m.cursors.SetCursor(resp.ID, resp.Result.UpdateTime)

	m.logger.Debug("monitor cycle applied",
		"request_id", resp.ID,
		"updates", len(resp.Result.StateData),
		"applied", applied)
	return nil
}

// monitorResultWire defers stateData elements so one bad element does not
// discard the batch.
type monitorResultWire struct {
	UpdateTime json.RawMessage   `json:"updateTime"`
	StateData  []json.RawMessage `json:"stateData"`
}

// decode parses a monitor response. It reports false for a response that
// is not an object or lacks ID or Result, and an error when ID or Result
// cannot be decoded. Malformed stateData elements are logged and skipped.
func (m *Monitor) decode(raw json.RawMessage) (MonitorResponse, bool, error) {
	var resp MonitorResponse

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || keys == nil {
		m.logger.Debug("monitor response is not an object")
		return resp, false, nil
	}
	id, ok := keys["ID"]
	if !ok {
		m.logger.Debug("monitor response missing ID")
		return resp, false, nil
	}
	result, ok := keys["Result"]
	if !ok || isNull(result) {
		m.logger.Debug("monitor response missing Result")
		return resp, false, nil
	}

	var err error
	if resp.ID, err = stringValue(id); err != nil {
		return resp, false, &Error{Kind: FailureGeneric, Message: "decoding monitor response ID", Err: err}
	}
	var wire monitorResultWire
	if err := json.Unmarshal(result, &wire); err != nil {
		return resp, false, &Error{Kind: FailureGeneric, Message: "decoding monitor result", Err: err}
	}

	resp.Result.UpdateTime = wire.UpdateTime
	resp.Result.StateData = make([]StateUpdate, 0, len(wire.StateData))
	for i, item := range wire.StateData {
		var u StateUpdate
		if err := json.Unmarshal(item, &u); err != nil {
			m.logger.Warn("skipping malformed state update",
				"request_id", resp.ID, "index", i, "error", err)
			continue
		}
		resp.Result.StateData = append(resp.Result.StateData, u)
	}
	return resp, true, nil
}

// apply writes updates into the matching summary and returns how many
// entities were found.
func (m *Monitor) apply(kind EntityKind, updates []StateUpdate) int {
	if m.data == nil {
		return 0
	}
	switch kind {
	case KindDoor:
		return applyUpdates(m.data.Doors, updates, m.logger)
	case KindInput:
		return applyUpdates(m.data.Inputs, updates, m.logger)
	case KindOutput:
		return applyUpdates(m.data.Outputs, updates, m.logger)
	case KindArea:
		return applyUpdates(m.data.Areas, updates, m.logger)
	}
	return 0
}

func applyUpdates[S State](s *Summary[S], updates []StateUpdate, logger Logger) int {
	applied := 0
	for _, u := range updates {
		e, ok := s.Get(u.ID)
		if !ok {
			logger.Warn("state update for unknown entity, reload required",
				"kind", s.Kind(), "id", u.ID)
			continue
		}
		e.applyUpdate(S(u.PublicState), u.ExtraFields)
		applied++
	}
	return applied
}

// Run loops Cycle until ctx is cancelled. Failures are logged and the next
// cycle starts after a short pause.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("state monitor started")
	defer m.logger.Info("state monitor stopped")

	for ctx.Err() == nil {
		if err := m.cycleAndNotify(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Error("monitor cycle failed", "error", err)
			if sleepContext(ctx, m.errDelay) != nil {
				return
			}
		}
	}
}

// cycleAndNotify runs one cycle, recovering from panics, then fires the
// cycle callback unless the context ended.
func (m *Monitor) cycleAndNotify(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("monitor cycle panicked: %v", r)
		}
	}()

	err = m.Cycle(ctx)
	if ctx.Err() == nil && m.onCycle != nil {
		m.onCycle(m.data)
	}
	return err
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
