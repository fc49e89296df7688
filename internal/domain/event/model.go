package event

import "time"

// Kind classifies what a notification is about.
type Kind string

const (
	KindIssue       Kind = "issue"
	KindPullRequest Kind = "pull_request"
	KindComment     Kind = "comment"
	KindReview      Kind = "review"
	KindQuestion    Kind = "question"
	KindUnknown     Kind = "unknown"
)

// InboundEvent is a raw notification message as delivered by the
// transport layer. It is never mutated after receipt.
type InboundEvent struct {
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// ParsedRecord is the structured view of an inbound event. Parsing never
// fails: input with no recognizable structure yields KindUnknown with
// empty token sets. A record is immutable once produced.
type ParsedRecord struct {
	Kind       Kind      `json:"kind"`
	Number     int       `json:"number,omitempty"`
	Author     string    `json:"author,omitempty"`
	Repo       string    `json:"repo,omitempty"`
	Title      string    `json:"title,omitempty"`
	Closed     bool      `json:"closed,omitempty"`
	Files      []string  `json:"files,omitempty"`
	Functions  []string  `json:"functions,omitempty"`
	ErrorTerms []string  `json:"error_terms,omitempty"`
	Words      []string  `json:"words,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}
