package flags

import (
	"errors"
	"time"

	"github.com/sebr/inception-bridge/internal/inception"
)

// ErrInvalidKey is returned for an empty flags key.
var ErrInvalidKey = errors.New("flags: key is required")

// Flags is one persisted set of review-event switches.
type Flags struct {
	Global   bool `json:"global_enabled"`
	System   bool `json:"system_enabled"`
	Audit    bool `json:"audit_enabled"`
	Access   bool `json:"access_enabled"`
	Security bool `json:"security_enabled"`
	Hardware bool `json:"hardware_enabled"`

	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// categoryEnabled reports the switch for one category. Unknown categories
// have no switch and are never enabled.
func (f Flags) categoryEnabled(category string) bool {
	switch category {
	case inception.CategorySystem:
		return f.System
	case inception.CategoryAudit:
		return f.Audit
	case inception.CategoryAccess:
		return f.Access
	case inception.CategorySecurity:
		return f.Security
	case inception.CategoryHardware:
		return f.Hardware
	}
	return false
}

// Allows reports whether an event of the given category passes: the global
// switch and the category switch must both be on.
func (f Flags) Allows(category string) bool {
	return f.Global && f.categoryEnabled(category)
}

// EnabledCategories lists the categories switched on, in catalogue order.
// The global switch is not consulted.
func (f Flags) EnabledCategories() []string {
	out := make([]string, 0, len(inception.Categories))
	for _, c := range inception.Categories {
		if f.categoryEnabled(c) {
			out = append(out, c)
		}
	}
	return out
}
