//go:build windows

package embed

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// openLibrary loads the runtime DLL. The altered search path makes the
// loader resolve its dependencies (vcruntime, python3.dll) from the DLL's
// own directory.
func openLibrary(path string) (*library, error) {
	handle, err := windows.LoadLibraryEx(path, 0, windows.LOAD_WITH_ALTERED_SEARCH_PATH)
	if err != nil {
		return nil, fmt.Errorf("LoadLibraryEx %s: %w", path, err)
	}
	return &library{path: path, handle: uintptr(handle)}, nil
}

func (l *library) sym(name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(l.handle), name)
}
