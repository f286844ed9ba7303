package aim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned if module method is called in the wrong
	// state, e.g. Init called twice.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvariant is returned when the execution order doesn't match the
	// node table. It means Plan wasn't called or nodes were changed after.
	ErrInvariant = errors.New("execution order mismatch")
	// ErrInvalidEnvironment is returned if buffer size or sample rate are
	// not positive.
	ErrInvalidEnvironment = errors.New("invalid environment")
)

// ErrorRun is returned if runner was successfully started, but execution
// and/or flush failed.
type ErrorRun struct {
	ErrExec  error
	ErrFlush error
}

func (e *ErrorRun) Error() string {
	switch {
	case e.ErrExec != nil && e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v after execute error: %v", e.ErrFlush, e.ErrExec)
	case e.ErrExec != nil:
		return fmt.Sprintf("execute error: %v", e.ErrExec)
	case e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v", e.ErrFlush)
	}
	return ""
}

// Is checks if any of errors match provided sentinel error.
func (e *ErrorRun) Is(err error) bool {
	if e.ErrExec != nil && errors.Is(e.ErrExec, err) {
		return true
	}
	if e.ErrFlush != nil && errors.Is(e.ErrFlush, err) {
		return true
	}
	return false
}

// runError returns untyped nil if both errors are nil.
func runError(errExec, errFlush error) error {
	if errExec == nil && errFlush == nil {
		return nil
	}
	return &ErrorRun{ErrExec: errExec, ErrFlush: errFlush}
}
