package krajc

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateRunnableName      = errors.New("duplicate runnable name")
	ErrExpectedInvariantViolation = errors.New("expected invariant violated")
	ErrScheduleFrozen             = errors.New("schedule is frozen")
	ErrGraphNotBuilt              = errors.New("dependency graph not built")
	ErrUnsupportedParam           = errors.New("unsupported system parameter")
	ErrNotASystem                 = errors.New("not a system")
)

// SystemError reports the failure of a single system during the execution
// of a schedule. A panicking system is reported the same way.
type SystemError struct {
	Schedule ScheduleId
	System   string
	Err      error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("system %q in schedule %s: %s", e.System, e.Schedule, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}
