package tracker

import "time"

// ItemState is the lifecycle state of a tracked work item.
type ItemState string

const (
	StateOpen      ItemState = "open"
	StateNeglected ItemState = "neglected"
	StateResolved  ItemState = "resolved"
)

// TrackedItem follows a pull request over time for neglect detection.
// Resolved is terminal.
type TrackedItem struct {
	Number       int       `json:"number"`
	Author       string    `json:"author,omitempty"`
	Repo         string    `json:"repo,omitempty"`
	State        ItemState `json:"state"`
	OpenedAt     time.Time `json:"opened_at"`
	LastActivity time.Time `json:"last_activity"`
}

// IdleDays reports whole days since the item's last activity.
func (t TrackedItem) IdleDays(now time.Time) int {
	return int(now.Sub(t.LastActivity).Hours() / 24)
}
