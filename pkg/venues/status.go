package venues

import "strings"

// AliveStatus records the last known operating state of a venue.
type AliveStatus string

// Alive statuses.
const (
	StatusActive   AliveStatus = "active"
	StatusInactive AliveStatus = "inactive"
	StatusUnknown  AliveStatus = "unknown"
)

// ParseAliveStatus maps free text from external sources onto the status
// vocabulary. Anything unrecognized is unknown, never an error.
func ParseAliveStatus(label string) AliveStatus {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "active", "alive", "open", "true", "yes":
		return StatusActive
	case "inactive", "closed", "dead", "false", "no":
		return StatusInactive
	default:
		return StatusUnknown
	}
}

// String returns the status label.
func (s AliveStatus) String() string {
	return string(s)
}
