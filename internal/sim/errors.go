package sim

import "errors"

// ErrInvalidConfiguration reports a strategy or population parameter outside
// its valid domain. It is only returned at model construction, never mid-run.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrInvalidStateTransition reports a caller protocol violation, such as
// exposing an agent that is not susceptible. It indicates a programming error
// in the driver, not a recoverable condition.
var ErrInvalidStateTransition = errors.New("invalid state transition")
