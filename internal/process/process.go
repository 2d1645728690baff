// Package process runs the bundled Python runtime as the interpreter
// executable instead of loading it in-process. On Unix the launcher process
// is replaced, so after handoff the launcher is the application; on Windows
// the interpreter runs as a child and its exit status is passed through.
// The interpreter sets sys.argv[0] to the entry script path; the
// launcher's own argv[0] is not forwarded, only the arguments after it.
//
// Importing this package registers the "exec" backend with the launcher.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/melee-dat-editor/launcher/internal/launcher"
	"github.com/sirupsen/logrus"
)

func init() {
	launcher.RegisterRuntime(launcher.BackendExec, func() launcher.Runtime {
		return New()
	})
}

// Runtime is the out-of-process runtime backend.
type Runtime struct {
	cfg         launcher.RuntimeConfig
	env         []string
	initialized bool

	// replace selects process replacement over a child process.
	replace bool

	// execFunc replaces the current process. Tests override it to capture
	// the call instead.
	execFunc func(argv0 string, argv []string, envv []string) error

	// runFunc runs a child to completion.
	runFunc func(cmd *exec.Cmd) error
}

// New returns a runtime using the platform's handoff strategy.
func New() *Runtime {
	return &Runtime{
		replace:  runtime.GOOS != "windows",
		execFunc: syscall.Exec,
		runFunc:  (*exec.Cmd).Run,
	}
}

// Initialize checks that the interpreter exists and prepares its
// environment. Nothing is started yet.
func (r *Runtime) Initialize(cfg launcher.RuntimeConfig) error {
	if r.initialized {
		return fmt.Errorf("runtime already initialized")
	}
	info, err := os.Stat(cfg.Interpreter)
	if err != nil {
		return fmt.Errorf("interpreter: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("interpreter %s is a directory", cfg.Interpreter)
	}

	r.cfg = cfg
	r.env = buildEnv(os.Environ(), cfg)
	r.initialized = true
	return nil
}

// buildEnv derives the interpreter environment from the host's. With
// IgnoreEnvironment every host PYTHON* variable is dropped; home and search
// path always come from the launcher.
func buildEnv(host []string, cfg launcher.RuntimeConfig) []string {
	env := make([]string, 0, len(host)+2)
	for _, kv := range host {
		key, _, _ := strings.Cut(kv, "=")
		if key == "PYTHONHOME" || key == "PYTHONPATH" {
			continue
		}
		if cfg.Flags.IgnoreEnvironment && strings.HasPrefix(strings.ToUpper(key), "PYTHON") {
			continue
		}
		env = append(env, kv)
	}
	return append(env,
		"PYTHONHOME="+cfg.Home,
		"PYTHONPATH="+strings.Join(cfg.SearchPath, string(filepath.ListSeparator)),
	)
}

// Argv returns the interpreter command line for script.
func (r *Runtime) Argv(script string) []string {
	argv := []string{r.cfg.Interpreter}
	if r.cfg.Flags.NoSite {
		argv = append(argv, "-S")
	}
	argv = append(argv, script)
	if len(r.cfg.Args) > 1 {
		argv = append(argv, r.cfg.Args[1:]...)
	}
	return argv
}

// RunFile hands off to the interpreter. When the process is replaced this
// only returns on failure.
func (r *Runtime) RunFile(name string) (int, error) {
	if !r.initialized {
		return launcher.ExitFatal, fmt.Errorf("runtime not initialized")
	}
	argv := r.Argv(name)

	if r.replace {
		logrus.Debugf("Replacing launcher with %s", argv[0])
		err := r.execFunc(argv[0], argv, r.env)
		return launcher.ExitFatal, fmt.Errorf("exec %s: %w", argv[0], err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = r.env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logrus.Debugf("Starting %s", strings.Join(argv, " "))
	err := r.runFunc(cmd)
	if err == nil {
		return launcher.ExitOK, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Killed by a signal reports -1.
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		return launcher.ExitFatal, nil
	}
	return launcher.ExitFatal, fmt.Errorf("run %s: %w", argv[0], err)
}

// Finalize has nothing to release; the interpreter owns its own teardown.
func (r *Runtime) Finalize() error {
	r.initialized = false
	return nil
}
