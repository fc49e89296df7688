package event

import "time"

// LogEntry is the audit record of one handled inbound event. Every
// event is logged, including ones the parser could not classify.
type LogEntry struct {
	ID         int64     `json:"id"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Kind       Kind      `json:"kind"`
	Number     int       `json:"number,omitempty"`
	Action     string    `json:"action"`
	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
}
