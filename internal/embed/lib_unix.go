//go:build darwin || freebsd || linux || netbsd

package embed

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// openLibrary loads the runtime with its symbols global so extension
// modules loaded later can resolve against it.
func openLibrary(path string) (*library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", path, err)
	}
	return &library{path: path, handle: handle}, nil
}

func (l *library) sym(name string) (uintptr, error) {
	return purego.Dlsym(l.handle, name)
}
