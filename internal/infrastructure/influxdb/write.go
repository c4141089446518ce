package influxdb

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/sebr/inception-bridge/internal/inception"
)

// Measurement names.
const (
	measurementEntityState = "entity_state"
	measurementReviewEvent = "review_event"
)

// WriteEntityState records one entity's public state.
//
// Tags are kind, id and name (plus alarm_state for areas); fields are the
// raw public_state bitmask, the decoded flag list and, when known, the
// panel's last state change tick. The write is non-blocking.
//
// Parameters:
//   - snap: The entity snapshot to record
//   - at: The observation time
func (c *Client) WriteEntityState(snap inception.EntitySnapshot, at time.Time) {
	tags := map[string]string{
		"kind": string(snap.Kind),
		"id":   snap.Info.ID,
		"name": snap.Info.Name,
	}
	if snap.AlarmState != "" {
		tags["alarm_state"] = string(snap.AlarmState)
	}

	fields := map[string]any{
		"public_state": int64(snap.PublicState),
		"flags":        strings.Join(snap.Flags, ","),
	}
	if snap.LastStateChangeTime != 0 {
		fields["last_state_change_time"] = snap.LastStateChangeTime
	}

	c.writePoint(write.NewPoint(measurementEntityState, tags, fields, at))
}

// WriteReviewEvent records one review event, keyed by its category and
// message value. The event id and description are fields so they do not
// inflate series cardinality.
//
// Parameters:
//   - ev: The normalised review event
//   - at: The observation time
func (c *Client) WriteReviewEvent(ev inception.ReviewEvent, at time.Time) {
	tags := map[string]string{
		"category":      ev.MessageCategory,
		"message_value": strconv.Itoa(ev.MessageValue),
	}

	fields := map[string]any{
		"event_id":            ev.EventID,
		"description":         ev.Description,
		"message_description": ev.MessageDescription,
		"when_ticks":          ev.WhenTicks,
	}
	for name, v := range map[string]any{"who": ev.Who, "what": ev.What, "where": ev.Where} {
		if v != nil {
			fields[name] = fmt.Sprint(v)
		}
	}

	c.writePoint(write.NewPoint(measurementReviewEvent, tags, fields, at))
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Example:
//
//	client.WritePoint("bridge_stats",
//	    map[string]string{"host": "bridge-01"},
//	    map[string]any{"review_dropped": 3}, time.Now())
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	c.writePoint(write.NewPoint(measurement, tags, fields, at))
}

func (c *Client) writePoint(p *write.Point) {
	if !c.IsConnected() || c.writeAPI == nil {
		return
	}
	c.writeAPI.WritePoint(p)
}
