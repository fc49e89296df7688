package knowledge

import "errors"

var (
	// ErrEmptyQuestion indicates a learn call with no usable question tokens.
	ErrEmptyQuestion = errors.New("question has no content to fingerprint")
	// ErrEmptyAnswer indicates a learn call with a blank answer.
	ErrEmptyAnswer = errors.New("answer must not be empty")
	// ErrEntryNotFound indicates a reinforce call for a missing entry.
	ErrEntryNotFound = errors.New("faq entry not found")
)
