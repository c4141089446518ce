package bridge

import (
	"sync"

	"github.com/sebr/inception-bridge/internal/inception"
)

// StateTracker remembers the last emitted public state per entity so that
// consumers of the full mirror only forward entities that changed.
//
// Thread Safety: All methods are safe for concurrent use.
type StateTracker struct {
	mu   sync.Mutex
	last map[string]uint32
}

// NewStateTracker creates an empty tracker. Every entity counts as changed
// the first time it is seen.
func NewStateTracker() *StateTracker {
	return &StateTracker{last: make(map[string]uint32)}
}

func trackerKey(snap inception.EntitySnapshot) string {
	return string(snap.Kind) + "/" + snap.Info.ID
}

// Changed records snap's state and reports whether it differs from the
// last recorded one.
func (t *StateTracker) Changed(snap inception.EntitySnapshot) bool {
	key := trackerKey(snap)

	t.mu.Lock()
	defer t.mu.Unlock()

	prev, seen := t.last[key]
	if seen && prev == snap.PublicState {
		return false
	}
	t.last[key] = snap.PublicState
	return true
}

// Forget drops the recorded state so the next Changed call reports true.
func (t *StateTracker) Forget(snap inception.EntitySnapshot) {
	t.mu.Lock()
	delete(t.last, trackerKey(snap))
	t.mu.Unlock()
}

// Changes returns the snapshots in data whose state changed, in kind order.
func (t *StateTracker) Changes(data *inception.Data) []inception.EntitySnapshot {
	if data == nil {
		return nil
	}
	var out []inception.EntitySnapshot
	for _, kind := range inception.Kinds {
		snaps, err := data.Entities(kind)
		if err != nil {
			continue
		}
		for _, snap := range snaps {
			if t.Changed(snap) {
				out = append(out, snap)
			}
		}
	}
	return out
}
