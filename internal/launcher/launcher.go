package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Launcher runs the bootstrap sequence once.
type Launcher struct {
	cfg     Config
	runtime Runtime
	goos    string

	// OS hooks, replaced in tests.
	executable func() (string, error)
	setenv     func(key, value string) error
	chdir      func(dir string) error
	stat       func(name string) (os.FileInfo, error)
}

// New creates a launcher for cfg driving rt.
func New(cfg Config, rt Runtime) *Launcher {
	return &Launcher{
		cfg:        cfg,
		runtime:    rt,
		goos:       runtime.GOOS,
		executable: os.Executable,
		setenv:     os.Setenv,
		chdir:      os.Chdir,
		stat:       os.Stat,
	}
}

// Run resolves the layout, brings up the runtime, executes the entry
// script and tears the runtime down. args is the full argument vector,
// argv[0] included. The returned code is the process exit status; err is
// non-nil whenever code is not ExitOK because of a failure.
func (l *Launcher) Run(args []string) (int, error) {
	self, err := l.selfPath()
	if err != nil {
		return ExitFatal, err
	}
	if len(args) == 0 {
		args = []string{self}
	}

	layout := Resolve(self, l.cfg, l.goos)
	log := logrus.WithFields(logrus.Fields{
		"home":    layout.Home,
		"backend": l.cfg.Backend,
	})
	log.Debugf("Search path: %s", layout.SearchPathString())

	// The runtime inherits the host environment at init, so native
	// libraries next to it must be findable before that.
	if err := l.setenv(l.cfg.LibraryEnvVar, layout.Home); err != nil {
		return ExitFatal, fmt.Errorf("failed to set %s: %w", l.cfg.LibraryEnvVar, err)
	}

	rc := RuntimeConfig{
		ProgramName: args[0],
		Home:        layout.Home,
		SearchPath:  layout.SearchPath,
		Library:     layout.Library,
		Interpreter: layout.Interpreter,
		Args:        args,
		Flags:       l.cfg.Flags,
	}
	if err := l.runtime.Initialize(rc); err != nil {
		return ExitFatal, fmt.Errorf("%w: %w", ErrRuntimeInit, err)
	}
	log.Debug("Runtime initialized")

	if err := l.chdir(layout.AppDir); err != nil {
		log.Warnf("Could not change to app directory: %v", err)
	}

	// The entry script is addressed absolutely so a failed chdir cannot
	// pick up a same-named file from the caller's directory.
	if _, err := l.stat(layout.EntryScript); err != nil {
		if ferr := l.runtime.Finalize(); ferr != nil {
			log.Warnf("Finalize after missing entry script: %v", ferr)
		}
		return ExitFatal, fmt.Errorf("%w: %s: %w", ErrEntryScriptNotFound, layout.EntryScript, err)
	}

	log.Debugf("Running %s", layout.EntryScript)
	code, runErr := l.runtime.RunFile(layout.EntryScript)

	if err := l.runtime.Finalize(); err != nil {
		return l.cfg.TeardownExitCode, fmt.Errorf("%w: %w", ErrTeardown, err)
	}

	if runErr != nil {
		if code == ExitOK {
			code = ExitFatal
		}
		return code, runErr
	}
	return code, nil
}

func (l *Launcher) selfPath() (string, error) {
	self, err := l.executable()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSelfPath, err)
	}
	if self == "" {
		return "", ErrSelfPath
	}
	// Resolve links so a shortcut or symlink elsewhere still finds the
	// runtime next to the real binary.
	if resolved, err := filepath.EvalSymlinks(self); err == nil {
		self = resolved
	} else {
		logrus.Debugf("Could not resolve symlinks for %s: %v", self, err)
	}
	abs, err := filepath.Abs(self)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSelfPath, err)
	}
	return abs, nil
}
