package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/melee-dat-editor/launcher/internal/launcher"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, launcher.ExitOK},
		{"plain error", errors.New("boom"), launcher.ExitFatal},
		{"script exit", &launcher.ExitError{Code: 3}, 3},
		{"teardown", &launcher.ExitError{Code: launcher.ExitTeardown, Err: launcher.ErrTeardown}, launcher.ExitTeardown},
		{"wrapped", fmt.Errorf("launch: %w", &launcher.ExitError{Code: 7}), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestHandleError(t *testing.T) {
	logrus.SetOutput(io.Discard)
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	assert.Equal(t, launcher.ExitOK, HandleError(nil))
	assert.Equal(t, launcher.ExitFatal, HandleError(&launcher.ExitError{Code: launcher.ExitFatal, Err: launcher.ErrScriptFailed}))
	assert.Equal(t, launcher.ExitTeardown, HandleError(&launcher.ExitError{Code: launcher.ExitTeardown, Err: launcher.ErrTeardown}))
}
