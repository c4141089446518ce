package inception

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	reviewPath = "/review"

	// DefaultReviewPageSize is the limit of the initial descending query.
	DefaultReviewPageSize = 50
)

// reviewListKeys are the object keys that may wrap the event list.
var reviewListKeys = []string{"Data", "data", "Events", "events", "Result", "result"}

// ReviewOptions configures the review-event poller.
type ReviewOptions struct {
	Enabled bool

	// PageSize is the limit of the initial query. Defaults to 50.
	PageSize int

	// CategoryFilter, when set, is sent as a comma-separated categoryFilter.
	CategoryFilter []string

	// MessageTypeIDFilter, when non-zero, is sent as messageTypeIdFilter.
	MessageTypeIDFilter int

	// PollInterval is the pause after a successful poll. Zero polls again
	// immediately.
	PollInterval time.Duration
}

// ReviewCursor is the poller's read position in the review log. A zero
// Time means unset.
type ReviewCursor struct {
	ReferenceID   string `json:"reference_id"`
	ReferenceTime int64  `json:"reference_time"`
}

// ReviewConfig holds the dependencies of a ReviewPoller.
type ReviewConfig struct {
	API      Requester
	Options  ReviewOptions
	Timeout  time.Duration
	Dispatch func(map[string]any)
	Logger   Logger

	// Sleep replaces the backoff sleep. It must honour ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ReviewPoller pages through the panel's review-event log.
//
// The cursor and retry counter are owned by the goroutine running Run;
// Cursor may be read concurrently.
type ReviewPoller struct {
	api      Requester
	opts     ReviewOptions
	timeout  time.Duration
	dispatch func(map[string]any)
	logger   Logger
	sleep    func(ctx context.Context, d time.Duration) error

	mu     sync.RWMutex
	cursor ReviewCursor
	retry  int
}

// NewReviewPoller creates a poller with an unset cursor.
func NewReviewPoller(cfg ReviewConfig) *ReviewPoller {
	p := &ReviewPoller{
		api:      cfg.API,
		opts:     cfg.Options,
		timeout:  orDefault(cfg.Timeout, DefaultReviewTimeout),
		dispatch: cfg.Dispatch,
		logger:   cfg.Logger,
		sleep:    cfg.Sleep,
	}
	if p.opts.PageSize <= 0 {
		p.opts.PageSize = DefaultReviewPageSize
	}
	if p.logger == nil {
		p.logger = nopLogger{}
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	return p
}

// Cursor returns the current read position.
func (p *ReviewPoller) Cursor() ReviewCursor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cursor
}

func (p *ReviewPoller) setCursor(c ReviewCursor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor = c
}

// query builds the /review query string for a cursor.
func (p *ReviewPoller) query(c ReviewCursor) string {
	q := url.Values{}
	if c.ReferenceTime == 0 {
		q.Set("dir", "desc")
		q.Set("limit", strconv.Itoa(p.opts.PageSize))
	} else {
		q.Set("referenceId", c.ReferenceID)
		q.Set("referenceTime", strconv.FormatInt(c.ReferenceTime, 10))
		q.Set("dir", "asc")
	}
	if len(p.opts.CategoryFilter) > 0 {
		q.Set("categoryFilter", strings.Join(p.opts.CategoryFilter, ","))
	}
	if p.opts.MessageTypeIDFilter != 0 {
		q.Set("messageTypeIdFilter", strconv.Itoa(p.opts.MessageTypeIDFilter))
	}
	return q.Encode()
}

// Poll fetches one page of events. When the cursor was unset at the start
// of the call the events only seed the cursor; otherwise each is
// dispatched in received order. It returns the number dispatched.
func (p *ReviewPoller) Poll(ctx context.Context) (int, error) {
	start := p.Cursor()

	raw, err := p.api.Request(ctx, http.MethodGet, reviewPath+"?"+p.query(start), nil, p.timeout)
	if err != nil {
		return 0, err
	}

	events, err := extractEvents(raw)
	if err != nil {
		return 0, err
	}

	initial := start.ReferenceTime == 0
	next := start
	dispatched := 0
	for i, item := range events {
		event, ok := item.(map[string]any)
		if !ok {
			p.logger.Warn("unexpected review event", "index", i, "type", fmt.Sprintf("%T", item))
			continue
		}
		id := anyString(event["ID"])
		if id == "" {
			continue
		}

		if !initial && p.dispatch != nil {
			p.dispatch(event)
			dispatched++
		}

		if tick := anyInt64(event["WhenTicks"], 0); tick > next.ReferenceTime {
			next = ReviewCursor{ReferenceID: id, ReferenceTime: tick}
		}
	}

	if next != start {
		p.setCursor(next)
	}
	if initial {
		p.logger.Debug("review cursor seeded", "events", len(events), "reference_time", next.ReferenceTime)
	}
	return dispatched, nil
}

// extractEvents finds the event list in a review response. The list may
// be the body itself or wrapped under one of reviewListKeys.
func extractEvents(raw json.RawMessage) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, &Error{Kind: FailureGeneric, Message: "decoding review response", Err: err}
	}

	switch v := body.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range reviewListKeys {
			if list, ok := v[key].([]any); ok {
				return list, nil
			}
		}
	}
	return nil, &Error{Kind: FailureGeneric, Message: fmt.Sprintf("unexpected review response shape %T", body)}
}

// Run polls until ctx is cancelled or a terminal failure occurs.
//
// Failure policy:
//   - authentication failure: stop
//   - communication failure with status 400, 401, 403 or 404: stop
//   - other communication failure: back off min(5s*2^(n-1), 300s)
//   - anything else: wait 60s without counting a retry
//
// Returns the terminal error, or nil when ctx is cancelled.
func (p *ReviewPoller) Run(ctx context.Context) error {
	p.logger.Info("review poller started")
	defer p.logger.Info("review poller stopped")

	for ctx.Err() == nil {
		_, err := p.Poll(ctx)
		if ctx.Err() != nil {
			return nil
		}

		var delay time.Duration
		switch {
		case err == nil:
			p.retry = 0
			delay = p.opts.PollInterval

		case errors.Is(err, ErrAuthentication):
			p.logger.Error("review polling stopped: authentication failed", "error", err)
			return err

		case errors.Is(err, ErrCommunication) && isTerminalClientError(err):
			p.logger.Error("review polling stopped: client error", "error", err)
			return err

		case errors.Is(err, ErrCommunication):
			p.retry++
			delay = BackoffDelay(p.retry)
			p.logger.Warn("review poll failed, backing off",
				"error", err, "retry", p.retry, "delay", delay)

		default:
			delay = genericErrorDelay
			p.logger.Error("review poll failed", "error", err, "delay", delay)
		}

		if delay > 0 {
			if p.sleep(ctx, delay) != nil {
				return nil
			}
		}
	}
	return nil
}
