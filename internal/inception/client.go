package inception

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Transport defaults.
const (
	// DefaultRequestTimeout applies to every call without an explicit timeout.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultMonitorTimeout must exceed the panel's 60 second long-poll window.
	DefaultMonitorTimeout = 70 * time.Second

	// DefaultReviewTimeout applies to review feed requests.
	DefaultReviewTimeout = 30 * time.Second

	// apiPrefix is prepended to every request path.
	apiPrefix = "/api/v1/"

	// maxErrorBody bounds the response body quoted in a status failure.
	maxErrorBody = 256
)

// Logger is the logging interface used by the client and its loops.
// *logging.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Requester issues panel API calls. *Client satisfies it.
type Requester interface {
	Request(ctx context.Context, method, path string, body any, timeout time.Duration) (json.RawMessage, error)
}

// Options configures a Client.
type Options struct {
	// Host is the panel base URL, e.g. "http://192.168.1.50".
	Host string

	// Token is the panel API token.
	Token string

	// HTTPClient is optional. A client without a global timeout is used
	// by default; every request carries its own deadline.
	HTTPClient *http.Client

	// RequestTimeout, MonitorTimeout and ReviewTimeout default to the
	// package constants when zero.
	RequestTimeout time.Duration
	MonitorTimeout time.Duration
	ReviewTimeout  time.Duration

	// Review configures the review-event poller.
	Review ReviewOptions

	// Cursors holds the long-poll cursors. Defaults to an in-memory store.
	Cursors CursorStore

	// Logger is optional.
	Logger Logger
}

// Client is the Inception panel API client. It owns the entity mirror,
// the two polling loops and the callback registries.
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	host           string
	token          string
	http           *http.Client
	requestTimeout time.Duration
	monitorTimeout time.Duration
	reviewTimeout  time.Duration
	reviewOpts     ReviewOptions
	cursors        CursorStore

	fetchMu sync.Mutex
	data    atomic.Pointer[Data]

	dataCallbacks   *fanout[*Data]
	reviewCallbacks *fanout[map[string]any]

	lifeMu        sync.Mutex
	cancel        context.CancelFunc
	done          chan struct{}
	closed        bool
	reviewStopped atomic.Bool

	logger   Logger
	loggerMu sync.RWMutex
}

// New creates a client. No network calls are made until Data, Authenticate
// or Connect is called.
func New(opts Options) (*Client, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if !strings.HasPrefix(opts.Host, "http://") && !strings.HasPrefix(opts.Host, "https://") {
		return nil, fmt.Errorf("host must start with http:// or https://")
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("token is required")
	}

	c := &Client{
		host:           strings.TrimRight(opts.Host, "/"),
		token:          opts.Token,
		http:           opts.HTTPClient,
		requestTimeout: orDefault(opts.RequestTimeout, DefaultRequestTimeout),
		monitorTimeout: orDefault(opts.MonitorTimeout, DefaultMonitorTimeout),
		reviewTimeout:  orDefault(opts.ReviewTimeout, DefaultReviewTimeout),
		reviewOpts:     opts.Review,
		cursors:        opts.Cursors,
		logger:         opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.cursors == nil {
		c.cursors = NewMemoryCursorStore()
	}
	if c.logger == nil {
		c.logger = nopLogger{}
	}
	c.dataCallbacks = newFanout[*Data]("data", c.getLogger)
	c.reviewCallbacks = newFanout[map[string]any]("review", c.getLogger)

	return c, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// SetLogger replaces the logger.
func (c *Client) SetLogger(logger Logger) {
	if logger == nil {
		logger = nopLogger{}
	}
	c.loggerMu.Lock()
	defer c.loggerMu.Unlock()
	c.logger = logger
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// Request performs one authenticated call against the panel API and returns
// the decoded-JSON-valid response body. An empty body is returned as null.
//
// Parameters:
//   - method: HTTP method
//   - path: API path relative to /api/v1; leading slashes are ignored
//   - body: JSON-encoded when non-nil
//   - timeout: per-call deadline; zero selects the client default
//
// Returns a *Error classified as authentication (401/403), communication
// (any other non-2xx, or a network failure) or generic (anything else).
func (c *Client) Request(ctx context.Context, method, path string, body any, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = c.requestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: FailureGeneric, Message: "encoding request body", Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), c.url(path), reader)
	if err != nil {
		return nil, &Error{Kind: FailureGeneric, Message: "building request", Err: err}
	}
	req.Header.Set("Authorization", "APIToken "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{
			Kind:    FailureCommunication,
			Timeout: isTimeoutErr(err),
			Message: "error fetching information",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best-effort context for the error
		return nil, statusError(resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Kind:    FailureCommunication,
			Timeout: isTimeoutErr(err),
			Message: "reading response body",
			Err:     err,
		}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, &Error{Kind: FailureGeneric, Message: "decoding response: invalid JSON"}
	}
	return json.RawMessage(data), nil
}

// url joins the host, API prefix and path.
func (c *Client) url(path string) string {
	return c.host + apiPrefix + strings.TrimLeft(path, "/")
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Authenticate validates the token with a lightweight read.
func (c *Client) Authenticate(ctx context.Context) error {
	if _, err := c.Request(ctx, http.MethodGet, "/control/input", nil, 0); err != nil {
		return err
	}
	return nil
}

// Data returns the entity mirror, fetching the four summaries concurrently
// on first use. A failed fetch is not cached.
func (c *Client) Data(ctx context.Context) (*Data, error) {
	if d := c.data.Load(); d != nil {
		return d, nil
	}

	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()
	if d := c.data.Load(); d != nil {
		return d, nil
	}

	var d Data
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Doors, err = fetchSummary[DoorState](gctx, c, KindDoor)
		return err
	})
	g.Go(func() (err error) {
		d.Inputs, err = fetchSummary[InputState](gctx, c, KindInput)
		return err
	})
	g.Go(func() (err error) {
		d.Outputs, err = fetchSummary[OutputState](gctx, c, KindOutput)
		return err
	})
	g.Go(func() (err error) {
		d.Areas, err = fetchSummary[AreaState](gctx, c, KindArea)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.data.Store(&d)
	c.getLogger().Info("entity summaries loaded",
		"doors", d.Doors.Len(),
		"inputs", d.Inputs.Len(),
		"outputs", d.Outputs.Len(),
		"areas", d.Areas.Len())
	return &d, nil
}

// Mirror returns the entity mirror, or nil before the first successful fetch.
func (c *Client) Mirror() *Data {
	return c.data.Load()
}

func fetchSummary[S State](ctx context.Context, api Requester, kind EntityKind) (*Summary[S], error) {
	raw, err := api.Request(ctx, http.MethodGet, "/control/"+string(kind)+"/summary", nil, 0)
	if err != nil {
		return nil, err
	}
	s, err := parseSummary[S](kind, raw)
	if err != nil {
		return nil, &Error{Kind: FailureGeneric, Message: "decoding " + string(kind) + " summary", Err: err}
	}
	return s, nil
}

// RegisterDataCallback subscribes fn to mirror updates under name. It
// returns false when name is already registered.
func (c *Client) RegisterDataCallback(name string, fn DataCallback) bool {
	return c.dataCallbacks.register(name, fn)
}

// RegisterReviewEventCallback subscribes fn to review events under name.
// It returns false when name is already registered.
func (c *Client) RegisterReviewEventCallback(name string, fn ReviewEventCallback) bool {
	return c.reviewCallbacks.register(name, fn)
}

// UnregisterDataCallback removes a data callback.
func (c *Client) UnregisterDataCallback(name string) bool {
	return c.dataCallbacks.unregister(name)
}

// UnregisterReviewEventCallback removes a review event callback.
func (c *Client) UnregisterReviewEventCallback(name string) bool {
	return c.reviewCallbacks.unregister(name)
}

// Connect loads the mirror if needed, fires the data callbacks once with
// it and starts the state monitor and the review poller. Both loops run
// until ctx is cancelled or Close is called.
func (c *Client) Connect(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.cancel != nil {
		return ErrAlreadyConnected
	}

	data, err := c.Data(ctx)
	if err != nil {
		return fmt.Errorf("loading entity summaries: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	monitor := NewMonitor(MonitorConfig{
		API:     c,
		Data:    data,
		Cursors: c.cursors,
		Timeout: c.monitorTimeout,
		OnCycle: c.dataCallbacks.publish,
		Logger:  c.getLogger(),
	})

	var review *ReviewPoller
	if c.reviewOpts.Enabled {
		review = NewReviewPoller(ReviewConfig{
			API:      c,
			Options:  c.reviewOpts,
			Timeout:  c.reviewTimeout,
			Dispatch: c.reviewCallbacks.publish,
			Logger:   c.getLogger(),
		})
	} else {
		c.reviewStopped.Store(true)
	}

	c.dataCallbacks.publish(data)
	go c.run(loopCtx, monitor, review)
	return nil
}

// run supervises both loops until they exit.
func (c *Client) run(ctx context.Context, monitor *Monitor, review *ReviewPoller) {
	defer close(c.done)

	var g errgroup.Group
	g.Go(c.guard("monitor", func() error {
		monitor.Run(ctx)
		return nil
	}))
	if review != nil {
		g.Go(c.guard("review", func() error {
			defer c.reviewStopped.Store(true)
			return review.Run(ctx)
		}))
	}

	if err := g.Wait(); err != nil {
		c.getLogger().Debug("polling loops exited", "error", err)
	}
}

// guard keeps a defect in one loop from taking down the process.
func (c *Client) guard(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				c.getLogger().Error("polling loop panicked", "loop", name, "panic", r)
				err = fmt.Errorf("%s loop panicked: %v", name, r)
			}
		}()
		return fn()
	}
}

// Connected reports whether the polling loops are running.
func (c *Client) Connected() bool {
	c.lifeMu.Lock()
	done := c.done
	c.lifeMu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// ReviewStopped reports whether the review poller has stopped permanently
// or was never started.
func (c *Client) ReviewStopped() bool {
	return c.reviewStopped.Load()
}

// Done returns a channel closed when both polling loops have exited.
// It returns nil before Connect.
func (c *Client) Done() <-chan struct{} {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	return c.done
}

// Close stops both loops, waits for them to exit, stops callback delivery
// and releases idle connections. It is safe to call more than once.
func (c *Client) Close() error {
	c.lifeMu.Lock()
	if c.closed {
		c.lifeMu.Unlock()
		return nil
	}
	c.closed = true
	cancel, done := c.cancel, c.done
	c.lifeMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	c.dataCallbacks.close()
	c.reviewCallbacks.close()
	c.http.CloseIdleConnections()

	c.getLogger().Debug("inception client closed")
	return nil
}

// HealthCheck verifies the panel is reachable and the token accepted.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Authenticate(ctx); err != nil {
		return fmt.Errorf("inception health check: %w", err)
	}
	return nil
}
