package inception

import "strings"

// Review event categories, as used by the category feature flags.
const (
	CategorySystem   = "System"
	CategoryAudit    = "Audit"
	CategoryAccess   = "Access"
	CategorySecurity = "Security"
	CategoryHardware = "Hardware"
	CategoryUnknown  = "Unknown"
)

// Categories lists the filterable review event categories.
var Categories = []string{CategorySystem, CategoryAudit, CategoryAccess, CategorySecurity, CategoryHardware}

// MessageType describes one review event message id.
type MessageType struct {
	Value       string
	Description string
}

// Category returns the prefix of the value before the first underscore,
// or CategoryUnknown when the value has none.
func (m MessageType) Category() string {
	if i := strings.IndexByte(m.Value, '_'); i > 0 {
		return m.Value[:i]
	}
	return CategoryUnknown
}

// LookupMessage returns the catalogue entry for a message id.
func LookupMessage(id int) (MessageType, bool) {
	m, ok := messageCatalogue[id]
	return m, ok
}

// ReviewEvent is the normalised form of a raw review event.
type ReviewEvent struct {
	EventID            string `json:"event_id"`
	Description        string `json:"description"`
	MessageValue       int    `json:"message_value"`
	MessageCategory    string `json:"message_category"`
	MessageDescription string `json:"message_description"`
	When               any    `json:"when"`
	WhenTicks          int64  `json:"when_ticks"`
	ReferenceTime      any    `json:"reference_time"`
	Who                any    `json:"who"`
	WhoID              any    `json:"who_id"`
	What               any    `json:"what"`
	WhatID             any    `json:"what_id"`
	Where              any    `json:"where"`
	WhereID            any    `json:"where_id"`
}

// NormalizeReviewEvent converts a raw review event into a ReviewEvent.
// An absent or unparsable MessageCategory is treated as 0, and an id
// missing from the catalogue yields value and description "Unknown".
func NormalizeReviewEvent(raw map[string]any) ReviewEvent {
	value := int(anyInt64(raw["MessageCategory"], 0))

	msg, ok := LookupMessage(value)
	if !ok {
		msg = MessageType{Value: CategoryUnknown, Description: CategoryUnknown}
	}

	return ReviewEvent{
		EventID:            anyString(raw["ID"]),
		Description:        anyString(raw["Description"]),
		MessageValue:       value,
		MessageCategory:    msg.Category(),
		MessageDescription: msg.Description,
		When:               raw["When"],
		WhenTicks:          anyInt64(raw["WhenTicks"], 0),
		ReferenceTime:      raw["ReferenceTime"],
		Who:                raw["Who"],
		WhoID:              raw["WhoID"],
		What:               raw["What"],
		WhatID:             raw["WhatID"],
		Where:              raw["Where"],
		WhereID:            raw["WhereID"],
	}
}
