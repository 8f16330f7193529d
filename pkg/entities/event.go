package entities

import (
	"strings"
	"time"
)

// StateEvent is one sensor state change as delivered by the upstream
// home automation stream. Unknown payload fields are ignored.
type StateEvent struct {
	EntityID    string     `json:"entity_id"`
	State       string     `json:"state"`
	Attributes  Attributes `json:"attributes"`
	LastChanged string     `json:"last_changed"`
}

type Attributes struct {
	DeviceClass       string `json:"device_class,omitempty"`
	FriendlyName      string `json:"friendly_name,omitempty"`
	UnitOfMeasurement string `json:"unit_of_measurement,omitempty"`
}

// HasRequiredFields reports whether the event carries enough to be worth
// processing. Events failing this check are skipped, not failed.
func (e StateEvent) HasRequiredFields() bool {
	return e.EntityID != "" && e.State != "" && e.LastChanged != ""
}

// ChangedAt parses the last_changed instant. The upstream also sends a
// last_updated field; last_changed is the single source of truth here.
func (e StateEvent) ChangedAt() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, e.LastChanged)
}

// SplitEntityID splits "<domain>.<name>" on the first dot. The name part
// identifies the twin verbatim; the domain is informational only.
func SplitEntityID(entityID string) (domain, name string, ok bool) {
	domain, name, ok = strings.Cut(entityID, ".")
	if !ok || name == "" {
		return "", "", false
	}
	return domain, name, true
}
