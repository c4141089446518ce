package inception

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"
)

// mockCall records one Request invocation.
type mockCall struct {
	Method  string
	Path    string
	Body    any
	Timeout time.Duration
}

// mockRequester implements Requester with a scripted response function.
type mockRequester struct {
	mu      sync.Mutex
	calls   []mockCall
	respond func(call mockCall) (json.RawMessage, error)
}

func (m *mockRequester) Request(_ context.Context, method, path string, body any, timeout time.Duration) (json.RawMessage, error) {
	call := mockCall{Method: method, Path: path, Body: body, Timeout: timeout}
	m.mu.Lock()
	m.calls = append(m.calls, call)
	respond := m.respond
	m.mu.Unlock()
	if respond == nil {
		return json.RawMessage("null"), nil
	}
	return respond(call)
}

func (m *mockRequester) Calls() []mockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// respondJSON returns a fixed body for every call.
func respondJSON(body string) func(mockCall) (json.RawMessage, error) {
	return func(mockCall) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	}
}

// respondSequence returns each result in turn, repeating the last one.
func respondSequence(results ...func(mockCall) (json.RawMessage, error)) func(mockCall) (json.RawMessage, error) {
	var (
		mu sync.Mutex
		n  int
	)
	return func(c mockCall) (json.RawMessage, error) {
		mu.Lock()
		i := n
		if n < len(results)-1 {
			n++
		}
		mu.Unlock()
		return results[i](c)
	}
}

func respondError(err error) func(mockCall) (json.RawMessage, error) {
	return func(mockCall) (json.RawMessage, error) {
		return nil, err
	}
}

// logEntry is one captured log line.
type logEntry struct {
	Level string
	Msg   string
}

// recordingLogger implements Logger and keeps every entry.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{Level: level, Msg: msg})
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.add("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.add("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.add("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.add("error", msg) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// doorSummaryJSON holds two locked, closed doors.
const doorSummaryJSON = `{
	"Doors": {
		"door-1": {
			"EntityInfo": {"ID": "door-1", "Name": "Front Door", "ReportingID": "1"},
			"CurrentState": 768,
			"LastStateChangeTime": 1000,
			"Location": "Lobby"
		},
		"door-2": {
			"EntityInfo": {"ID": "door-2", "Name": "Back Door", "ReportingID": "2"},
			"CurrentState": 768,
			"LastStateChangeTime": 2000
		}
	}
}`

const inputSummaryJSON = `{
	"Inputs": {
		"input-1": {
			"EntityInfo": {"ID": "input-1", "Name": "Hall PIR", "ReportingID": "10", "InputType": 1, "IsCustomInput": false},
			"CurrentState": 64,
			"LastStateChangeTime": 0
		}
	}
}`

const outputSummaryJSON = `{
	"Outputs": {
		"output-1": {
			"EntityInfo": {"ID": "output-1", "Name": "Siren", "ReportingID": "20"},
			"CurrentState": 2,
			"LastStateChangeTime": 0
		}
	}
}`

const areaSummaryJSON = `{
	"Areas": {
		"area-1": {
			"EntityInfo": {"ID": "area-1", "Name": "House", "ReportingID": "30"},
			"CurrentState": 2048,
			"LastStateChangeTime": 0,
			"ArmInfo": {"EntryDelaySecs": 30, "ExitDelaySecs": 60, "MultiModeArmEnabled": true}
		}
	}
}`

// summaryBodies maps each summary path to its fixture.
var summaryBodies = map[string]string{
	"/control/door/summary":   doorSummaryJSON,
	"/control/input/summary":  inputSummaryJSON,
	"/control/output/summary": outputSummaryJSON,
	"/control/area/summary":   areaSummaryJSON,
}

// testData builds a mirror from the fixtures.
func testData(t *testing.T) *Data {
	t.Helper()
	doors, err := parseSummary[DoorState](KindDoor, []byte(doorSummaryJSON))
	if err != nil {
		t.Fatalf("parse doors: %v", err)
	}
	inputs, err := parseSummary[InputState](KindInput, []byte(inputSummaryJSON))
	if err != nil {
		t.Fatalf("parse inputs: %v", err)
	}
	outputs, err := parseSummary[OutputState](KindOutput, []byte(outputSummaryJSON))
	if err != nil {
		t.Fatalf("parse outputs: %v", err)
	}
	areas, err := parseSummary[AreaState](KindArea, []byte(areaSummaryJSON))
	if err != nil {
		t.Fatalf("parse areas: %v", err)
	}
	return &Data{Doors: doors, Inputs: inputs, Outputs: outputs, Areas: areas}
}

// reviewEventJSON renders one raw review event.
func reviewEventJSON(id string, ticks int64) string {
	return fmt.Sprintf(`{"ID": %q, "Description": "event %s", "MessageCategory": 2000, "WhenTicks": %d}`, id, id, ticks)
}

func nopLoggerFunc() Logger { return nopLogger{} }
