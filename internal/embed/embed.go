//go:build darwin || freebsd || linux || netbsd || windows

package embed

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unsafe"

	"github.com/melee-dat-editor/launcher/internal/launcher"
	"github.com/sirupsen/logrus"
)

func init() {
	launcher.RegisterRuntime(launcher.BackendEmbed, func() launcher.Runtime {
		return New()
	})
}

// flushStdio runs after the entry script so buffered output reaches the
// console or log before teardown. Under the GUI subsystem the streams can
// be None.
const flushStdio = `import sys
for _s in (sys.stdout, sys.stderr):
    if _s is not None:
        try:
            _s.flush()
        except Exception:
            pass
del _s
`

// Runtime is the in-process runtime backend.
type Runtime struct {
	lib *library
	api *capi

	// buffers holds everything allocated by Py_DecodeLocale. The runtime
	// keeps pointers to some of them until finalization.
	buffers     []uintptr
	initialized bool
	locked      bool
}

// New returns an uninitialized runtime.
func New() *Runtime {
	return &Runtime{}
}

// Initialize loads the runtime library, applies flags, home, search path
// and program name, starts the interpreter and installs argv.
func (r *Runtime) Initialize(cfg launcher.RuntimeConfig) error {
	if r.initialized {
		return fmt.Errorf("runtime already initialized")
	}

	// Interpreter thread state belongs to the OS thread that created it.
	runtime.LockOSThread()
	r.locked = true

	lib, err := openLibrary(cfg.Library)
	if err != nil {
		return err
	}
	api, err := bindAPI(lib)
	if err != nil {
		return err
	}
	r.lib, r.api = lib, api

	flags := map[string]bool{
		flagNoSite:            cfg.Flags.NoSite,
		flagIgnoreEnvironment: cfg.Flags.IgnoreEnvironment,
		flagInspect:           cfg.Flags.Inspect,
	}
	for name, on := range flags {
		if !on {
			continue
		}
		if err := lib.setInt(name, 1); err != nil {
			return err
		}
	}

	program, err := r.decode(cfg.ProgramName)
	if err != nil {
		return fmt.Errorf("program name: %w", err)
	}
	api.setProgramName(program)

	home, err := r.decode(cfg.Home)
	if err != nil {
		return fmt.Errorf("python home: %w", err)
	}
	api.setPythonHome(home)

	path, err := r.decode(strings.Join(cfg.SearchPath, string(filepath.ListSeparator)))
	if err != nil {
		return fmt.Errorf("search path: %w", err)
	}
	api.setPath(path)

	logrus.Debugf("Initializing runtime from %s", lib.path)
	api.initialize()
	if api.isInitialized() == 0 {
		return fmt.Errorf("interpreter did not initialize")
	}
	r.initialized = true

	return r.setArgv(cfg.Args)
}

// setArgv installs args as sys.argv without touching sys.path, which
// already holds exactly the configured search path.
func (r *Runtime) setArgv(args []string) error {
	if len(args) == 0 {
		return nil
	}
	argv := make([]uintptr, len(args))
	for i, arg := range args {
		w, err := r.decode(arg)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
		argv[i] = w
	}
	r.api.sysSetArgvEx(int32(len(argv)), unsafe.Pointer(&argv[0]), 0)
	runtime.KeepAlive(argv)
	return nil
}

// RunFile compiles and executes name as the __main__ module.
func (r *Runtime) RunFile(name string) (int, error) {
	if !r.initialized {
		return launcher.ExitFatal, fmt.Errorf("runtime not initialized")
	}
	api := r.api
	defer api.runSimpleString(flushStdio, 0)

	src, err := os.ReadFile(name)
	if err != nil {
		return launcher.ExitFatal, fmt.Errorf("%w: %w", launcher.ErrEntryScriptNotFound, err)
	}

	mainModule := api.importAddModule("__main__")
	if mainModule == 0 {
		return r.handleError()
	}
	globals := api.moduleGetDict(mainModule)

	file := api.decodeFSDefault(name)
	if file == 0 {
		return r.handleError()
	}
	rc := api.dictSetItemString(globals, "__file__", file)
	api.decRef(file)
	if rc != 0 {
		return r.handleError()
	}

	code := api.compileString(string(src), name, pyFileInput, 0, -1)
	if code == 0 {
		return r.handleError()
	}
	result := api.evalCode(code, globals, globals)
	api.decRef(code)
	if result == 0 {
		return r.handleError()
	}
	api.decRef(result)

	return launcher.ExitOK, nil
}

// handleError consumes the pending exception. SystemExit yields its code;
// anything else is printed with its traceback.
func (r *Runtime) handleError() (int, error) {
	api := r.api
	if api.errOccurred() == 0 {
		return launcher.ExitFatal, launcher.ErrScriptFailed
	}

	var typ, value, tb uintptr
	api.errFetch(&typ, &value, &tb)
	api.errNormalize(&typ, &value, &tb)

	if typ != 0 && api.errGivenMatches(typ, api.excSystemExit) != 0 {
		code := r.systemExitCode(value)
		api.xdecref(typ)
		api.xdecref(value)
		api.xdecref(tb)
		return code, nil
	}

	api.errRestore(typ, value, tb)
	api.errPrint()
	return launcher.ExitFatal, launcher.ErrScriptFailed
}

// systemExitCode follows the interpreter's own rules: None is success, an
// int is the status, anything else is printed and means failure.
func (r *Runtime) systemExitCode(exc uintptr) int {
	api := r.api
	if exc == 0 {
		return launcher.ExitOK
	}
	code := api.getAttrString(exc, "code")
	if code == 0 {
		api.errClear()
		return launcher.ExitFatal
	}
	defer api.decRef(code)

	if code == api.none {
		return launcher.ExitOK
	}
	n := api.longAsLong(code)
	if n == -1 && api.errOccurred() != 0 {
		api.errClear()
		if s := api.objectStr(code); s != 0 {
			fmt.Fprintln(os.Stderr, api.unicodeAsUTF8(s))
			api.decRef(s)
		} else {
			api.errClear()
		}
		return launcher.ExitFatal
	}
	return int(n)
}

// Finalize shuts the interpreter down and frees the decoded buffers.
func (r *Runtime) Finalize() error {
	defer r.unlock()

	if !r.initialized {
		r.release()
		return nil
	}
	r.initialized = false

	rc := r.api.finalizeEx()
	r.release()
	if rc < 0 {
		return fmt.Errorf("Py_FinalizeEx returned %d", rc)
	}
	return nil
}

// decode converts s with the runtime's locale decoder.
func (r *Runtime) decode(s string) (uintptr, error) {
	w := r.api.decodeLocale(s, 0)
	if w == 0 {
		return 0, fmt.Errorf("cannot decode %q", s)
	}
	r.buffers = append(r.buffers, w)
	return w, nil
}

func (r *Runtime) release() {
	if r.api != nil {
		for _, b := range r.buffers {
			r.api.rawFree(b)
		}
	}
	r.buffers = nil
}

func (r *Runtime) unlock() {
	if r.locked {
		runtime.UnlockOSThread()
		r.locked = false
	}
}
