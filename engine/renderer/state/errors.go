package state

import "fmt"

// UsageError reports a violated scope or lock contract: a second lock on a held
// channel, a draw outside its Target scope, a reset while locked, or a stack underflow.
// It is a programming defect and is never worth retrying.
type UsageError struct {
	Op     string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage error: %s: %s", e.Op, e.Reason)
}
