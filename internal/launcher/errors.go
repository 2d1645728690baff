package launcher

import (
	"errors"
	"fmt"
)

// Process exit statuses.
const (
	ExitOK    = 0
	ExitFatal = 1

	// ExitTeardown tells a wrapping process that finalizing the runtime
	// failed, as opposed to the application reporting an error.
	ExitTeardown = 120
)

var (
	ErrSelfPath            = errors.New("cannot resolve launcher path")
	ErrRuntimeInit         = errors.New("runtime initialization failed")
	ErrEntryScriptNotFound = errors.New("entry script not found")
	ErrScriptFailed        = errors.New("entry script raised an exception")
	ErrTeardown            = errors.New("runtime teardown failed")
	ErrUnknownBackend      = errors.New("unknown runtime backend")
)

// ExitError carries a process exit status out of the launcher.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Delegated reports whether err belongs to the application rather than the
// bootstrap. The runtime has already printed the traceback for those.
func Delegated(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrScriptFailed) {
		return true
	}
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Err == nil
}
