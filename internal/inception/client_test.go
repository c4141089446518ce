package inception

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, host string) *Client {
	t.Helper()
	c, err := New(Options{Host: host, Token: "secret-token"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid", Options{Host: "http://panel", Token: "t"}, false},
		{"https", Options{Host: "https://panel/", Token: "t"}, false},
		{"missing host", Options{Token: "t"}, true},
		{"missing scheme", Options{Host: "panel", Token: "t"}, true},
		{"missing token", Options{Host: "http://panel"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequest_URLAndHeaders(t *testing.T) {
	var (
		gotPath, gotAuth, gotType, gotMethod string
		gotBody                              []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok": true}`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/")
	raw, err := c.Request(context.Background(), "post", "///control/door/d1/activity", map[string]string{"Type": "ControlDoor"}, 0)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/api/v1/control/door/d1/activity" {
		t.Errorf("path = %q, want /api/v1/control/door/d1/activity", gotPath)
	}
	if gotAuth != "APIToken secret-token" {
		t.Errorf("Authorization = %q, want APIToken secret-token", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotType)
	}
	if string(gotBody) != `{"Type":"ControlDoor"}` {
		t.Errorf("body = %s", gotBody)
	}
	if string(raw) != `{"ok": true}` {
		t.Errorf("response = %s", raw)
	}
}

func TestRequest_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   error
		wantStatus int
	}{
		{"unauthorized", http.StatusUnauthorized, "", ErrAuthentication, 401},
		{"forbidden", http.StatusForbidden, "", ErrAuthentication, 403},
		{"not found", http.StatusNotFound, "no such entity", ErrCommunication, 404},
		{"server error", http.StatusInternalServerError, "", ErrCommunication, 500},
		{"invalid json", http.StatusOK, "{not json", ErrGeneric, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) //nolint:errcheck // test handler
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, 0)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("Request() error = %v, want %v", err, tt.wantKind)
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not *Error", err)
			}
			if e.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", e.Status, tt.wantStatus)
			}
			if tt.body != "" && tt.wantStatus >= 400 && !strings.Contains(err.Error(), tt.body) {
				t.Errorf("error %q does not quote body %q", err, tt.body)
			}
		})
	}
}

func TestRequest_EmptyBodyIsNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	raw, err := c.Request(context.Background(), http.MethodPost, "control/output/o1/activity", nil, 0)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if string(raw) != "null" {
		t.Errorf("response = %s, want null", raw)
	}
}

func TestRequest_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL)
	_, err := c.Request(context.Background(), http.MethodGet, "/slow", nil, 50*time.Millisecond)
	if !errors.Is(err, ErrCommunication) {
		t.Fatalf("Request() error = %v, want ErrCommunication", err)
	}
	if !IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = false, want true", err)
	}
}

func TestRequest_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := srv.URL
	srv.Close()

	c := newTestClient(t, host)
	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, time.Second)
	if !errors.Is(err, ErrCommunication) {
		t.Errorf("Request() error = %v, want ErrCommunication", err)
	}
	if IsTimeout(err) {
		t.Error("connection refused reported as timeout")
	}
}

func TestRequest_UnencodableBody(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.Request(context.Background(), http.MethodPost, "/x", map[string]any{"f": func() {}}, 0)
	if !errors.Is(err, ErrGeneric) {
		t.Errorf("Request() error = %v, want ErrGeneric", err)
	}
}

// fakePanel serves summaries, an idle long poll and an empty review feed.
type fakePanel struct {
	summaryHits atomic.Int32
	monitorHits atomic.Int32
	reviewHits  atomic.Int32
}

func (p *fakePanel) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1")
		switch {
		case strings.HasSuffix(path, "/summary"):
			p.summaryHits.Add(1)
			w.Write([]byte(summaryBodies[path])) //nolint:errcheck // test handler
		case path == "/control/input":
			w.Write([]byte(`[]`)) //nolint:errcheck // test handler
		case path == "/monitor-updates":
			p.monitorHits.Add(1)
			select {
			case <-r.Context().Done():
			case <-time.After(20 * time.Millisecond):
				w.Write([]byte(`{"ID": "DoorStateRequest", "Result": {"updateTime": "1", "stateData": []}}`)) //nolint:errcheck // test handler
			}
		case path == "/review":
			p.reviewHits.Add(1)
			w.Write([]byte(`[]`)) //nolint:errcheck // test handler
		default:
			http.NotFound(w, r)
		}
	})
}

func TestClient_DataFetchesOnce(t *testing.T) {
	panel := &fakePanel{}
	srv := httptest.NewServer(panel.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Data(ctx); err != nil {
				t.Errorf("Data() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := panel.summaryHits.Load(); got != 4 {
		t.Errorf("summary requests = %d, want 4", got)
	}

	d, _ := c.Data(ctx)
	if d.Doors.Len() != 2 || d.Inputs.Len() != 1 || d.Outputs.Len() != 1 || d.Areas.Len() != 1 {
		t.Errorf("mirror sizes = %d/%d/%d/%d", d.Doors.Len(), d.Inputs.Len(), d.Outputs.Len(), d.Areas.Len())
	}
	if c.Mirror() != d {
		t.Error("Mirror() does not return the cached data")
	}
}

func TestClient_DataFailureNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	panel := &fakePanel{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() && strings.Contains(r.URL.Path, "/area/") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		panel.handler().ServeHTTP(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if _, err := c.Data(context.Background()); !errors.Is(err, ErrCommunication) {
		t.Fatalf("Data() error = %v, want ErrCommunication", err)
	}
	if c.Mirror() != nil {
		t.Error("failed fetch was cached")
	}

	fail.Store(false)
	if _, err := c.Data(context.Background()); err != nil {
		t.Fatalf("Data() retry error = %v", err)
	}
}

func TestClient_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "APIToken good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	good, _ := New(Options{Host: srv.URL, Token: "good"})
	if err := good.Authenticate(context.Background()); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}
	bad, _ := New(Options{Host: srv.URL, Token: "bad"})
	if err := bad.Authenticate(context.Background()); !errors.Is(err, ErrAuthentication) {
		t.Errorf("Authenticate() error = %v, want ErrAuthentication", err)
	}
}

func TestClient_ConnectAndClose(t *testing.T) {
	panel := &fakePanel{}
	srv := httptest.NewServer(panel.handler())
	defer srv.Close()

	c, err := New(Options{
		Host:   srv.URL,
		Token:  "t",
		Review: ReviewOptions{Enabled: true, PollInterval: 10 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cycles := make(chan *Data, 16)
	if !c.RegisterDataCallback("test", func(d *Data) {
		select {
		case cycles <- d:
		default:
		}
	}) {
		t.Fatal("RegisterDataCallback() = false")
	}
	if c.RegisterDataCallback("test", func(*Data) {}) {
		t.Error("duplicate RegisterDataCallback() = true, want false")
	}

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := c.Connect(context.Background()); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second Connect() error = %v, want ErrAlreadyConnected", err)
	}

	// The first delivery comes from Connect, the second from a monitor cycle.
	for i := 0; i < 2; i++ {
		select {
		case d := <-cycles:
			if d.Doors.Len() != 2 {
				t.Errorf("callback mirror has %d doors, want 2", d.Doors.Len())
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("data callback %d not fired", i+1)
		}
	}
	if !c.Connected() {
		t.Error("Connected() = false while running")
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case <-c.Done():
	default:
		t.Error("Done() not closed after Close()")
	}
	if c.Connected() {
		t.Error("Connected() = true after Close()")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := c.Connect(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Connect() after Close() error = %v, want ErrClosed", err)
	}
	if panel.monitorHits.Load() == 0 || panel.reviewHits.Load() == 0 {
		t.Errorf("monitor hits = %d, review hits = %d; want both > 0",
			panel.monitorHits.Load(), panel.reviewHits.Load())
	}
}

func TestClient_ReviewStopsOnAuthFailure(t *testing.T) {
	panel := &fakePanel{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/review") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		panel.handler().ServeHTTP(w, r)
	}))
	defer srv.Close()

	c, _ := New(Options{Host: srv.URL, Token: "t", Review: ReviewOptions{Enabled: true}})
	defer c.Close()

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !c.ReviewStopped() {
		if time.Now().After(deadline) {
			t.Fatal("review poller did not stop")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !c.Connected() {
		t.Error("monitor stopped along with the review poller")
	}
}

func TestClient_ReviewCallbackReceivesEvents(t *testing.T) {
	var polls atomic.Int32
	panel := &fakePanel{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/review") {
			switch polls.Add(1) {
			case 1:
				w.Write([]byte("[" + reviewEventJSON("old", 10) + "]")) //nolint:errcheck // test handler
			case 2:
				w.Write([]byte("[" + reviewEventJSON("new", 20) + "]")) //nolint:errcheck // test handler
			default:
				w.Write([]byte(`[]`)) //nolint:errcheck // test handler
			}
			return
		}
		panel.handler().ServeHTTP(w, r)
	}))
	defer srv.Close()

	c, _ := New(Options{Host: srv.URL, Token: "t", Review: ReviewOptions{Enabled: true, PollInterval: 5 * time.Millisecond}})
	defer c.Close()

	events := make(chan map[string]any, 4)
	c.RegisterReviewEventCallback("test", func(e map[string]any) { events <- e })

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	select {
	case e := <-events:
		if e["ID"] != "new" {
			t.Errorf("event ID = %v, want new", e["ID"])
		}
	case <-time.After(5 * time.Second):
		t.Fatal("review callback not fired")
	}
	select {
	case e := <-events:
		t.Errorf("unexpected second event %v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClient_UnregisterCallbacks(t *testing.T) {
	c := newTestClient(t, "http://panel")
	if c.UnregisterDataCallback("missing") {
		t.Error("UnregisterDataCallback(missing) = true")
	}
	c.RegisterReviewEventCallback("a", func(map[string]any) {})
	if !c.UnregisterReviewEventCallback("a") {
		t.Error("UnregisterReviewEventCallback(a) = false")
	}
	if !c.RegisterReviewEventCallback("a", func(map[string]any) {}) {
		t.Error("re-register after unregister = false")
	}
}

func TestClient_RequestBodyIsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if err := c.ControlDoor(context.Background(), "d1", DoorControlTimedUnlock, 5); err != nil {
		t.Fatalf("ControlDoor() error = %v", err)
	}
	if got["DoorControlType"] != "TimedUnlock" || got["TimeSecs"] != float64(5) {
		t.Errorf("body = %v", got)
	}
}
