//go:build darwin || freebsd || linux || netbsd || windows

package embed

import (
	"unsafe"
)

// pyFileInput is the start symbol for compiling a module (Py_file_input).
const pyFileInput = 257

// capi holds the subset of the runtime's C API the launcher drives. Object
// pointers are carried as uintptr and never dereferenced from Go.
type capi struct {
	decodeLocale    func(arg string, size uintptr) uintptr
	rawFree         func(p uintptr)
	setProgramName  func(name uintptr)
	setPythonHome   func(home uintptr)
	setPath         func(path uintptr)
	initialize      func()
	isInitialized   func() int32
	sysSetArgvEx    func(argc int32, argv unsafe.Pointer, updatePath int32)
	finalizeEx      func() int32
	runSimpleString func(command string, flags uintptr) int32

	compileString     func(src, filename string, start int32, flags uintptr, optimize int32) uintptr
	importAddModule   func(name string) uintptr
	moduleGetDict     func(module uintptr) uintptr
	dictSetItemString func(dict uintptr, key string, item uintptr) int32
	decodeFSDefault   func(s string) uintptr
	evalCode          func(code, globals, locals uintptr) uintptr
	getAttrString     func(o uintptr, name string) uintptr
	objectStr         func(o uintptr) uintptr
	unicodeAsUTF8     func(o uintptr) string
	longAsLong        func(o uintptr) int32
	decRef            func(o uintptr)

	errOccurred       func() uintptr
	errPrint          func()
	errClear          func()
	errFetch          func(ptype, pvalue, ptraceback *uintptr)
	errNormalize      func(ptype, pvalue, ptraceback *uintptr)
	errRestore        func(ptype, pvalue, ptraceback uintptr)
	errGivenMatches   func(given, exc uintptr) int32
	excSystemExit     uintptr
	none              uintptr
}

// Pre-initialization switches, exported as C ints.
const (
	flagNoSite            = "Py_NoSiteFlag"
	flagIgnoreEnvironment = "Py_IgnoreEnvironmentFlag"
	flagInspect           = "Py_InspectFlag"
)

func bindAPI(lib *library) (*capi, error) {
	api := &capi{}

	funcs := []struct {
		fptr any
		name string
	}{
		{&api.decodeLocale, "Py_DecodeLocale"},
		{&api.rawFree, "PyMem_RawFree"},
		{&api.setProgramName, "Py_SetProgramName"},
		{&api.setPythonHome, "Py_SetPythonHome"},
		{&api.setPath, "Py_SetPath"},
		{&api.initialize, "Py_Initialize"},
		{&api.isInitialized, "Py_IsInitialized"},
		{&api.sysSetArgvEx, "PySys_SetArgvEx"},
		{&api.finalizeEx, "Py_FinalizeEx"},
		{&api.runSimpleString, "PyRun_SimpleStringFlags"},
		{&api.compileString, "Py_CompileStringExFlags"},
		{&api.importAddModule, "PyImport_AddModule"},
		{&api.moduleGetDict, "PyModule_GetDict"},
		{&api.dictSetItemString, "PyDict_SetItemString"},
		{&api.decodeFSDefault, "PyUnicode_DecodeFSDefault"},
		{&api.evalCode, "PyEval_EvalCode"},
		{&api.getAttrString, "PyObject_GetAttrString"},
		{&api.objectStr, "PyObject_Str"},
		{&api.unicodeAsUTF8, "PyUnicode_AsUTF8"},
		{&api.longAsLong, "PyLong_AsLong"},
		{&api.decRef, "Py_DecRef"},
		{&api.errOccurred, "PyErr_Occurred"},
		{&api.errPrint, "PyErr_Print"},
		{&api.errClear, "PyErr_Clear"},
		{&api.errFetch, "PyErr_Fetch"},
		{&api.errNormalize, "PyErr_NormalizeException"},
		{&api.errRestore, "PyErr_Restore"},
		{&api.errGivenMatches, "PyErr_GivenExceptionMatches"},
	}
	for _, f := range funcs {
		if err := lib.bindFunc(f.fptr, f.name); err != nil {
			return nil, err
		}
	}

	var err error
	if api.excSystemExit, err = lib.object("PyExc_SystemExit"); err != nil {
		return nil, err
	}
	if api.none, err = lib.objectAt("_Py_NoneStruct"); err != nil {
		return nil, err
	}
	return api, nil
}

// xdecref mirrors Py_XDECREF.
func (api *capi) xdecref(o uintptr) {
	if o != 0 {
		api.decRef(o)
	}
}
