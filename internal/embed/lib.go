//go:build darwin || freebsd || linux || netbsd || windows

package embed

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// library is a loaded runtime shared library.
type library struct {
	path   string
	handle uintptr
}

// bindFunc points fptr at the exported function name.
func (l *library) bindFunc(fptr any, name string) error {
	addr, err := l.sym(name)
	if err != nil {
		return fmt.Errorf("%s: missing symbol %s: %w", l.path, name, err)
	}
	if addr == 0 {
		return fmt.Errorf("%s: symbol %s is null", l.path, name)
	}
	purego.RegisterFunc(fptr, addr)
	return nil
}

// dataAddr returns the address of an exported variable.
func (l *library) dataAddr(name string) (unsafe.Pointer, error) {
	addr, err := l.sym(name)
	if err != nil {
		return nil, fmt.Errorf("%s: missing symbol %s: %w", l.path, name, err)
	}
	if addr == 0 {
		return nil, fmt.Errorf("%s: symbol %s is null", l.path, name)
	}
	// addr points into the shared library's data segment, which the Go
	// GC never moves.
	return *(*unsafe.Pointer)(unsafe.Pointer(&addr)), nil
}

// setInt writes a C int variable.
func (l *library) setInt(name string, value int32) error {
	p, err := l.dataAddr(name)
	if err != nil {
		return err
	}
	*(*int32)(p) = value
	return nil
}

// object reads a PyObject* variable.
func (l *library) object(name string) (uintptr, error) {
	p, err := l.dataAddr(name)
	if err != nil {
		return 0, err
	}
	return *(*uintptr)(p), nil
}

// objectAt returns the address of a statically allocated object.
func (l *library) objectAt(name string) (uintptr, error) {
	p, err := l.dataAddr(name)
	if err != nil {
		return 0, err
	}
	return uintptr(p), nil
}
