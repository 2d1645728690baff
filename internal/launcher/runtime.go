package launcher

import (
	"fmt"
	"sort"
	"sync"
)

// Runtime is a bundled interpreter that can be brought up once, run one
// script, and be torn down.
type Runtime interface {
	// Initialize applies cfg and starts the runtime. It must be called
	// exactly once, before RunFile.
	Initialize(cfg RuntimeConfig) error

	// RunFile executes the named script relative to the working directory.
	// A script that raises returns a non-zero code and ErrScriptFailed.
	RunFile(name string) (int, error)

	// Finalize releases the runtime.
	Finalize() error
}

// RuntimeConfig is everything a Runtime needs before initialization.
type RuntimeConfig struct {
	// ProgramName is argv[0] as the launcher received it.
	ProgramName string

	Home        string
	SearchPath  []string
	Library     string
	Interpreter string

	// Args is the complete argument vector, argv[0] included.
	Args []string

	Flags Flags
}

// RuntimeFactory constructs a fresh Runtime.
type RuntimeFactory func() Runtime

var (
	runtimesMu sync.RWMutex
	runtimes   = map[string]RuntimeFactory{}
)

// RegisterRuntime makes a backend available under name. Backends call this
// from init; importing the backend package is what enables it.
func RegisterRuntime(name string, factory RuntimeFactory) {
	runtimesMu.Lock()
	defer runtimesMu.Unlock()
	if factory == nil {
		panic("launcher: RegisterRuntime factory is nil")
	}
	if _, dup := runtimes[name]; dup {
		panic("launcher: RegisterRuntime called twice for " + name)
	}
	runtimes[name] = factory
}

// NewRuntime returns a new instance of the named backend.
func NewRuntime(name string) (Runtime, error) {
	runtimesMu.RLock()
	factory, ok := runtimes[name]
	runtimesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, name, Runtimes())
	}
	return factory(), nil
}

// Runtimes lists registered backend names.
func Runtimes() []string {
	runtimesMu.RLock()
	defer runtimesMu.RUnlock()
	names := make([]string, 0, len(runtimes))
	for name := range runtimes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
