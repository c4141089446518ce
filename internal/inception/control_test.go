package inception

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// activityRecorder captures control requests.
type activityRecorder struct {
	mu     sync.Mutex
	path   string
	body   map[string]any
	status int
}

func (a *activityRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		a.mu.Lock()
		defer a.mu.Unlock()
		a.path = r.URL.Path
		a.body = nil
		json.Unmarshal(data, &a.body) //nolint:errcheck // test handler
		if a.status != 0 {
			w.WriteHeader(a.status)
		}
	}
}

func TestControl_Bodies(t *testing.T) {
	tests := []struct {
		name     string
		kind     EntityKind
		id       string
		action   string
		timeSecs int
		wantPath string
		wantBody map[string]any
	}{
		{
			name: "door lock", kind: KindDoor, id: "d1", action: "lock",
			wantPath: "/api/v1/control/door/d1/activity",
			wantBody: map[string]any{"Type": "ControlDoor", "DoorControlType": "Lock"},
		},
		{
			name: "door timed unlock", kind: KindDoor, id: "d1", action: "timed_unlock", timeSecs: 5,
			wantPath: "/api/v1/control/door/d1/activity",
			wantBody: map[string]any{"Type": "ControlDoor", "DoorControlType": "TimedUnlock", "TimeSecs": float64(5)},
		},
		{
			name: "door unlock ignores time", kind: KindDoor, id: "d1", action: "unlock", timeSecs: 9,
			wantPath: "/api/v1/control/door/d1/activity",
			wantBody: map[string]any{"Type": "ControlDoor", "DoorControlType": "Unlock"},
		},
		{
			name: "input isolate", kind: KindInput, id: "i1", action: "isolate",
			wantPath: "/api/v1/control/input/i1/activity",
			wantBody: map[string]any{"Type": "ControlInput", "InputControlType": "Isolate"},
		},
		{
			name: "output off", kind: KindOutput, id: "o1", action: "off",
			wantPath: "/api/v1/control/output/o1/activity",
			wantBody: map[string]any{"Type": "ControlOutput", "OutputControlType": "Off"},
		},
		{
			name: "area arm sleep", kind: KindArea, id: "a1", action: "arm_sleep",
			wantPath: "/api/v1/control/area/a1/activity",
			wantBody: map[string]any{"Type": "ControlArea", "AreaControlType": "ArmSleep"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &activityRecorder{}
			srv := httptest.NewServer(rec.handler())
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			if err := c.Control(context.Background(), tt.kind, tt.id, tt.action, tt.timeSecs); err != nil {
				t.Fatalf("Control() error = %v", err)
			}

			rec.mu.Lock()
			defer rec.mu.Unlock()
			if rec.path != tt.wantPath {
				t.Errorf("path = %q, want %q", rec.path, tt.wantPath)
			}
			if len(rec.body) != len(tt.wantBody) {
				t.Errorf("body = %v, want %v", rec.body, tt.wantBody)
			}
			for k, v := range tt.wantBody {
				if rec.body[k] != v {
					t.Errorf("body[%s] = %v, want %v", k, rec.body[k], v)
				}
			}
		})
	}
}

func TestControl_Invalid(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown kind", c.Control(ctx, "lift", "x", "up", 0), ErrUnknownKind},
		{"bad door action", c.Control(ctx, KindDoor, "x", "explode", 0), ErrInvalidControl},
		{"area action on output", c.Control(ctx, KindOutput, "x", "arm", 0), ErrInvalidControl},
		{"timed unlock without time", c.Control(ctx, KindDoor, "x", "timed_unlock", 0), ErrInvalidControl},
		{"raw door type", c.ControlDoor(ctx, "x", DoorControlType(9), 0), ErrInvalidControl},
		{"raw input type", c.ControlInput(ctx, "x", "Bypass"), ErrInvalidControl},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}
}

func TestControl_PanelRejection(t *testing.T) {
	rec := &activityRecorder{status: http.StatusNotFound}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.ControlOutput(context.Background(), "missing", OutputControlOn)
	if !errors.Is(err, ErrCommunication) {
		t.Errorf("ControlOutput() error = %v, want ErrCommunication", err)
	}
}

func TestDoorControlType_JSON(t *testing.T) {
	for i, want := range []string{`"Lock"`, `"Unlock"`, `"Open"`, `"TimedUnlock"`, `"Lockout"`, `"Reinstate"`} {
		got, err := json.Marshal(DoorControlType(i))
		if err != nil || string(got) != want {
			t.Errorf("Marshal(%d) = %s, %v; want %s", i, got, err, want)
		}
	}
	if _, err := json.Marshal(DoorControlType(-1)); err == nil {
		t.Error("Marshal(-1) succeeded, want error")
	}
}
