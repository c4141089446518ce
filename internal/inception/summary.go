package inception

import (
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"sync"
)

// EntityKind names one of the four panel entity kinds. The value is the
// path segment used by the panel API.
type EntityKind string

// Entity kinds.
const (
	KindDoor   EntityKind = "door"
	KindInput  EntityKind = "input"
	KindOutput EntityKind = "output"
	KindArea   EntityKind = "area"
)

// Kinds lists every entity kind in a stable order.
var Kinds = []EntityKind{KindDoor, KindInput, KindOutput, KindArea}

// ParseKind validates an entity kind string. Plural forms are accepted.
func ParseKind(s string) (EntityKind, error) {
	for _, k := range Kinds {
		if s == string(k) || s == string(k)+"s" {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// containerKey is the summary response key holding the entity map.
func (k EntityKind) containerKey() string {
	switch k {
	case KindDoor:
		return "Doors"
	case KindInput:
		return "Inputs"
	case KindOutput:
		return "Outputs"
	case KindArea:
		return "Areas"
	}
	return ""
}

// EntityInfo is the immutable identity of an entity.
type EntityInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReportingID string `json:"reporting_id"`

	// Inputs only.
	InputType     InputType `json:"input_type,omitempty"`
	IsCustomInput bool      `json:"is_custom_input,omitempty"`
}

func parseEntityInfo(kind EntityKind, raw json.RawMessage) (EntityInfo, error) {
	var info EntityInfo
	if isNull(raw) {
		return info, nil
	}
	fields, _, err := splitFields(raw, "ID", "Name", "ReportingID", "InputType", "IsCustomInput")
	if err != nil {
		return info, err
	}
	if info.ID, err = stringValue(fields["ID"]); err != nil {
		return info, fmt.Errorf("ID: %w", err)
	}
	if info.Name, err = stringValue(fields["Name"]); err != nil {
		return info, fmt.Errorf("Name: %w", err)
	}
	if info.ReportingID, err = stringValue(fields["ReportingID"]); err != nil {
		return info, fmt.Errorf("ReportingID: %w", err)
	}
	if kind == KindInput {
		t, err := int64Value(fields["InputType"])
		if err != nil {
			return info, fmt.Errorf("InputType: %w", err)
		}
		info.InputType = InputType(t)
		if info.IsCustomInput, err = boolValue(fields["IsCustomInput"]); err != nil {
			return info, fmt.Errorf("IsCustomInput: %w", err)
		}
	}
	return info, nil
}

// ArmInfo holds an area's arming timings.
type ArmInfo struct {
	EntryDelaySecs      int  `json:"EntryDelaySecs"`
	ExitDelaySecs       int  `json:"ExitDelaySecs"`
	DeferArmDelaySecs   int  `json:"DeferArmDelaySecs"`
	AreaWarnTimeSecs    int  `json:"AreaWarnTimeSecs"`
	MultiModeArmEnabled bool `json:"MultiModeArmEnabled"`
}

// Entry is one mirrored entity. Identity fields are fixed at construction;
// the public state and extra fields are replaced by the state monitor.
//
// Thread Safety: All methods are safe for concurrent use.
type Entry[S State] struct {
	Info    EntityInfo
	ArmInfo *ArmInfo // areas only

	mu              sync.RWMutex
	state           S
	lastStateChange int64
	extra           map[string]any
}

// PublicState returns the last server-reported state.
func (e *Entry[S]) PublicState() S {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// LastStateChangeTime returns the panel tick of the last state change
// reported by the summary endpoint.
func (e *Entry[S]) LastStateChangeTime() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastStateChange
}

// ExtraFields returns a copy of the unmodelled vendor fields.
func (e *Entry[S]) ExtraFields() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.extra)
}

// applyUpdate replaces the public state and merges extra fields.
func (e *Entry[S]) applyUpdate(state S, extra map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
	if e.extra == nil {
		e.extra = make(map[string]any, len(extra)+1)
	}
	for k, v := range extra {
		e.extra[k] = v
	}
	e.extra["state_description"] = state.Descriptions()
}

func parseEntry[S State](kind EntityKind, data []byte) (*Entry[S], error) {
	known := []string{"EntityInfo", "CurrentState", "LastStateChangeTime"}
	if kind == KindArea {
		known = append(known, "ArmInfo")
	}
	fields, extra, err := splitFields(data, known...)
	if err != nil {
		return nil, err
	}

	info, err := parseEntityInfo(kind, fields["EntityInfo"])
	if err != nil {
		return nil, fmt.Errorf("EntityInfo: %w", err)
	}
	state, err := uint32Value(fields["CurrentState"])
	if err != nil {
		return nil, fmt.Errorf("CurrentState: %w", err)
	}
	changed, err := int64Value(fields["LastStateChangeTime"])
	if err != nil {
		return nil, fmt.Errorf("LastStateChangeTime: %w", err)
	}

	e := &Entry[S]{
		Info:            info,
		state:           S(state),
		lastStateChange: changed,
		extra:           extra,
	}
	if kind == KindArea {
		e.ArmInfo = &ArmInfo{}
		if raw := fields["ArmInfo"]; !isNull(raw) {
			if err := json.Unmarshal(raw, e.ArmInfo); err != nil {
				return nil, fmt.Errorf("ArmInfo: %w", err)
			}
		}
	}
	return e, nil
}

// Summary maps entity id to entry for one entity kind. The set of ids is
// fixed when the summary is built; entities are never added or pruned.
type Summary[S State] struct {
	kind  EntityKind
	items map[string]*Entry[S]
}

// Kind returns the entity kind held by the summary.
func (s *Summary[S]) Kind() EntityKind { return s.kind }

// Get looks up an entry by id.
func (s *Summary[S]) Get(id string) (*Entry[S], bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.items[id]
	return e, ok
}

// Len returns the number of entries.
func (s *Summary[S]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns the entries sorted by id. The result is never nil.
func (s *Summary[S]) Items() []*Entry[S] {
	if s == nil {
		return []*Entry[S]{}
	}
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*Entry[S], 0, len(ids))
	for _, id := range ids {
		out = append(out, s.items[id])
	}
	return out
}

// parseSummary builds a summary from a /control/{kind}/summary response.
// A missing or null container yields an empty summary.
func parseSummary[S State](kind EntityKind, data []byte) (*Summary[S], error) {
	key := kind.containerKey()
	fields, _, err := splitFields(data, key)
	if err != nil {
		return nil, fmt.Errorf("%s summary: %w", kind, err)
	}

	var raw map[string]json.RawMessage
	if c := fields[key]; !isNull(c) {
		if err := json.Unmarshal(c, &raw); err != nil {
			return nil, fmt.Errorf("%s summary %s: %w", kind, key, err)
		}
	}

	s := &Summary[S]{kind: kind, items: make(map[string]*Entry[S], len(raw))}
	for id, entryData := range raw {
		e, err := parseEntry[S](kind, entryData)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, id, err)
		}
		if e.Info.ID == "" {
			e.Info.ID = id
		}
		s.items[id] = e
	}
	return s, nil
}

// Data is the entity mirror: one summary per kind.
type Data struct {
	Doors   *Summary[DoorState]
	Inputs  *Summary[InputState]
	Outputs *Summary[OutputState]
	Areas   *Summary[AreaState]
}

// EntitySnapshot is a point-in-time, kind-independent copy of an entry.
type EntitySnapshot struct {
	Kind                EntityKind     `json:"kind"`
	Info                EntityInfo     `json:"info"`
	PublicState         uint32         `json:"public_state"`
	Flags               []string       `json:"flags"`
	Descriptions        []string       `json:"descriptions"`
	AlarmState          AlarmState     `json:"alarm_state,omitempty"`
	LastStateChangeTime int64          `json:"last_state_change_time"`
	ArmInfo             *ArmInfo       `json:"arm_info,omitempty"`
	ExtraFields         map[string]any `json:"extra_fields,omitempty"`
}

// Snapshot copies the entry.
func (e *Entry[S]) Snapshot(kind EntityKind) EntitySnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := EntitySnapshot{
		Kind:                kind,
		Info:                e.Info,
		PublicState:         uint32(e.state),
		Flags:               e.state.Flags(),
		Descriptions:        e.state.Descriptions(),
		LastStateChangeTime: e.lastStateChange,
		ArmInfo:             e.ArmInfo,
		ExtraFields:         maps.Clone(e.extra),
	}
	if area, ok := any(e.state).(AreaState); ok {
		snap.AlarmState = area.AlarmState()
	}
	return snap
}

func snapshots[S State](s *Summary[S]) []EntitySnapshot {
	if s == nil {
		return []EntitySnapshot{}
	}
	items := s.Items()
	out := make([]EntitySnapshot, 0, len(items))
	for _, e := range items {
		out = append(out, e.Snapshot(s.Kind()))
	}
	return out
}

// Entities returns snapshots of every entity of a kind, sorted by id.
func (d *Data) Entities(kind EntityKind) ([]EntitySnapshot, error) {
	switch kind {
	case KindDoor:
		return snapshots(d.Doors), nil
	case KindInput:
		return snapshots(d.Inputs), nil
	case KindOutput:
		return snapshots(d.Outputs), nil
	case KindArea:
		return snapshots(d.Areas), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Entity returns a snapshot of one entity.
func (d *Data) Entity(kind EntityKind, id string) (EntitySnapshot, error) {
	var (
		snap EntitySnapshot
		ok   bool
	)
	switch kind {
	case KindDoor:
		snap, ok = snapshotOf(d.Doors, id)
	case KindInput:
		snap, ok = snapshotOf(d.Inputs, id)
	case KindOutput:
		snap, ok = snapshotOf(d.Outputs, id)
	case KindArea:
		snap, ok = snapshotOf(d.Areas, id)
	default:
		return snap, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if !ok {
		return snap, fmt.Errorf("%w: %s %s", ErrUnknownEntity, kind, id)
	}
	return snap, nil
}

func snapshotOf[S State](s *Summary[S], id string) (EntitySnapshot, bool) {
	e, ok := s.Get(id)
	if !ok {
		return EntitySnapshot{}, false
	}
	return e.Snapshot(s.Kind()), true
}

// ParseData builds a mirror from summary response bodies keyed by kind. A
// kind missing from raw gets an empty summary.
func ParseData(raw map[EntityKind]json.RawMessage) (*Data, error) {
	body := func(k EntityKind) []byte {
		if b, ok := raw[k]; ok && len(b) > 0 {
			return b
		}
		return []byte("{}")
	}

	var (
		d   Data
		err error
	)
	if d.Doors, err = parseSummary[DoorState](KindDoor, body(KindDoor)); err != nil {
		return nil, err
	}
	if d.Inputs, err = parseSummary[InputState](KindInput, body(KindInput)); err != nil {
		return nil, err
	}
	if d.Outputs, err = parseSummary[OutputState](KindOutput, body(KindOutput)); err != nil {
		return nil, err
	}
	if d.Areas, err = parseSummary[AreaState](KindArea, body(KindArea)); err != nil {
		return nil, err
	}
	return &d, nil
}
