package dedup

import "errors"

var (
	// ErrUnknownKind indicates an attempt to register a record that the
	// parser could not classify.
	ErrUnknownKind = errors.New("cannot register entry of unknown kind")
)
