package validation

import "fmt"

// Error is a user-correctable rejection: bad question schema, missing or
// malformed answers, malformed request parameters. Handlers map it to a 4xx
// response; it is never retried automatically.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Errorf builds an Error with a formatted message.
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
