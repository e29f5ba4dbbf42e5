package dungeon

import (
	"errors"
	"fmt"
)

// ErrOutOfRange reports an interaction attempted from too far away.
// Callers treat it as "nothing happened".
var ErrOutOfRange = errors.New("out of interaction range")

// PreconditionError reports an operation attempted in the wrong state,
// such as opening a door that is still locked. Recoverable: the caller
// shows feedback and the state is unchanged.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// ConfigurationError reports malformed stage content discovered at
// runtime, such as an interaction with a door id the stage never
// defined. Stages should fail validation before play instead.
type ConfigurationError struct {
	Subject string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("stage configuration: %s: %s", e.Subject, e.Reason)
}

// MapLoadError reports a failed stage swap. The previous stage stays
// fully intact when this is returned.
type MapLoadError struct {
	TargetMap string
	Err       error
}

func (e *MapLoadError) Error() string {
	return fmt.Sprintf("loading map %q: %v", e.TargetMap, e.Err)
}

func (e *MapLoadError) Unwrap() error {
	return e.Err
}
