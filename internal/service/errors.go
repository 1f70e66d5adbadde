package service

import "errors"

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrDraftNotFound      = errors.New("draft not found")
)

// RateLimitError is an advisory throttle rejection, kept distinct from
// validation failures so clients can back off instead of fixing the payload.
// The message carries the wait hint.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string { return e.Message }
