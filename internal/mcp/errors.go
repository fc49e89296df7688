package mcp

import (
	"errors"
	"fmt"

	"github.com/mgreer/custodian/internal/domain/dedup"
	"github.com/mgreer/custodian/internal/domain/knowledge"
	"github.com/mgreer/custodian/internal/domain/report"
	"github.com/mgreer/custodian/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// mapError maps domain errors to MCP error codes, passing through
// anything it does not recognize.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, dedup.ErrUnknownKind):
		return &APIError{Code: "UNKNOWN_KIND", Message: "event kind could not be classified", RecoveryHint: "Only classified events enter the duplicate registry"}
	case errors.Is(err, knowledge.ErrEmptyQuestion):
		return &APIError{Code: "EMPTY_QUESTION", Message: "question has no usable words", RecoveryHint: "Provide a question with content words"}
	case errors.Is(err, knowledge.ErrEmptyAnswer):
		return &APIError{Code: "EMPTY_ANSWER", Message: "answer is empty", RecoveryHint: "Provide a non-empty answer"}
	case errors.Is(err, knowledge.ErrEntryNotFound):
		return &APIError{Code: "ENTRY_NOT_FOUND", Message: "knowledge entry not found"}
	case errors.Is(err, report.ErrSynthesisInFlight):
		return &APIError{Code: "REPORT_IN_FLIGHT", Message: "a report synthesis is already running", RecoveryHint: "Retry after the current run finishes"}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "requested record not found", RecoveryHint: "Check the ID"}
	default:
		return err
	}
}
