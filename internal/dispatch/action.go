package dispatch

import "github.com/mgreer/custodian/internal/domain/event"

// ActionKind identifies what kind of outbound response an event
// produced.
type ActionKind string

const (
	ActionAcknowledgeIssue ActionKind = "acknowledge_issue"
	ActionReportDuplicate  ActionKind = "report_duplicate"
	ActionAnswerQuestion   ActionKind = "answer_question"
	ActionEscalate         ActionKind = "escalate"
	ActionAcknowledgePR    ActionKind = "acknowledge_pr"
	// ActionAcknowledgeGeneric covers events the parser could not
	// classify; they are acknowledged and audited but excluded from
	// clustering and FAQ learning.
	ActionAcknowledgeGeneric ActionKind = "acknowledge_generic"
)

// OutboundAction is the core's reply to one inbound event. Rendering to
// an actual email or webhook call belongs to the outbound collaborator.
type OutboundAction struct {
	Kind       ActionKind         `json:"kind"`
	Recipients []string           `json:"recipients"`
	Subject    string             `json:"subject"`
	Body       string             `json:"body"`
	Record     event.ParsedRecord `json:"record"`
}
