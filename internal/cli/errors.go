package cli

import (
	"errors"

	"github.com/melee-dat-editor/launcher/internal/launcher"
	"github.com/sirupsen/logrus"
)

// HandleError reports err and returns the process exit status for it.
// Failures of the application itself were already reported by the runtime
// and are only mapped to their status.
func HandleError(err error) int {
	if err == nil {
		return launcher.ExitOK
	}
	if !launcher.Delegated(err) {
		logrus.Error(err)
		reportFatal(err)
	}
	return ExitCode(err)
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return launcher.ExitOK
	}
	var exitErr *launcher.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return launcher.ExitFatal
}
