package draftsync

import (
	"errors"
	"fmt"
)

// ErrMissingIdentity is returned when a step beyond branding is submitted
// before the server has assigned the agent an ID.
var ErrMissingIdentity = errors.New("agent has no identity yet; complete the branding step first")

// ErrSubmitInFlight is returned by BeginSubmit while a previous submission
// has not finished.
var ErrSubmitInFlight = errors.New("a save is already in progress")

// SubmitError wraps a failed step submission. The draft is guaranteed
// untouched when a SubmitError comes back.
type SubmitError struct {
	Step  int
	Cause error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("saving step %d: %v", e.Step, e.Cause)
}

func (e *SubmitError) Unwrap() error { return e.Cause }

// FetchError wraps a failed canonical-record fetch.
type FetchError struct {
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching agent record: %v", e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }
