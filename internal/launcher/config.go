// Package launcher bootstraps the bundled Python runtime that ships next to
// the executable and hands control to the application's entry script.
package launcher

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Backend names accepted by Config.Backend.
const (
	BackendEmbed = "embed"
	BackendExec  = "exec"
)

// Config describes where the bundled runtime and the application live
// relative to the launcher, and how the runtime is isolated. It is built
// once, before the runtime is touched, and never mutated afterwards.
type Config struct {
	// PythonVersion is the full version of the bundled runtime, e.g. 3.6.8.
	PythonVersion string

	// Arch is the architecture suffix of the runtime directory.
	Arch string

	// StdlibArchive is the zipped standard library inside the runtime home.
	// Derived from PythonVersion when empty.
	StdlibArchive string

	// PlatformDir holds platform extension modules. Optional.
	PlatformDir string

	// PackageDirs are bundled third-party package directories, relative to
	// the runtime home, in search order.
	PackageDirs []string

	// Library overrides the runtime shared library path relative to the
	// runtime home.
	Library string

	// Interpreter overrides the runtime executable path relative to the
	// runtime home.
	Interpreter string

	// AppDir is the application directory relative to the launcher.
	AppDir string

	// EntryScript is the file executed inside AppDir.
	EntryScript string

	// Flags suppress host-specific runtime behaviour.
	Flags Flags

	// LibraryEnvVar is set to the runtime home before initialization so
	// native libraries next to the runtime can be found.
	LibraryEnvVar string

	// Backend names the registered Runtime implementation, BackendEmbed or
	// BackendExec unless another backend is linked in.
	Backend string

	// TeardownExitCode is returned when finalizing the runtime fails.
	TeardownExitCode int
}

// Flags are the pre-initialization switches applied to the runtime.
type Flags struct {
	// NoSite skips automatic import of the site module.
	NoSite bool

	// IgnoreEnvironment ignores PYTHON* variables from the host.
	IgnoreEnvironment bool

	// Inspect keeps the runtime alive for inspection after an error
	// instead of exiting on SystemExit.
	Inspect bool
}

// DefaultConfig returns the layout of the shipped distribution.
func DefaultConfig() Config {
	return Config{
		PythonVersion: "3.6.8",
		Arch:          "amd64",
		PlatformDir:   "win32",
		PackageDirs:   []string{"pyqt5", "pyqt5/bin", "yaml"},
		AppDir:        "melee-dat-editor",
		EntryScript:   "melee_dat_editor.py",
		Flags: Flags{
			NoSite:            true,
			IgnoreEnvironment: true,
			Inspect:           true,
		},
		LibraryEnvVar:    DefaultLibraryEnvVar(runtime.GOOS),
		Backend:          BackendEmbed,
		TeardownExitCode: ExitTeardown,
	}
}

// DefaultLibraryEnvVar returns the variable the OS loader consults for
// shared libraries.
func DefaultLibraryEnvVar(goos string) string {
	switch goos {
	case "windows":
		return "PATH"
	case "darwin":
		return "DYLD_LIBRARY_PATH"
	default:
		return "LD_LIBRARY_PATH"
	}
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if _, _, err := c.versionParts(); err != nil {
		return err
	}
	if c.Arch == "" {
		return fmt.Errorf("arch is required")
	}
	if c.AppDir == "" {
		return fmt.Errorf("app dir is required")
	}
	if c.EntryScript == "" {
		return fmt.Errorf("entry script is required")
	}
	if c.LibraryEnvVar == "" {
		return fmt.Errorf("library env var is required")
	}

	rel := map[string]string{
		"app dir":        c.AppDir,
		"entry script":   c.EntryScript,
		"stdlib archive": c.StdlibArchive,
		"platform dir":   c.PlatformDir,
		"library":        c.Library,
		"interpreter":    c.Interpreter,
	}
	for i, dir := range c.PackageDirs {
		if dir == "" {
			return fmt.Errorf("package dir %d: path is empty", i)
		}
		rel[fmt.Sprintf("package dir %d", i)] = dir
	}
	for name, p := range rel {
		if err := checkRelative(name, p); err != nil {
			return err
		}
	}

	if c.Backend == "" {
		return fmt.Errorf("%w: backend is required", ErrUnknownBackend)
	}

	if c.TeardownExitCode == ExitOK || c.TeardownExitCode == ExitFatal {
		return fmt.Errorf("teardown exit code %d collides with a reserved code", c.TeardownExitCode)
	}
	if c.TeardownExitCode < 0 || c.TeardownExitCode > 255 {
		return fmt.Errorf("teardown exit code %d out of range", c.TeardownExitCode)
	}

	return nil
}

// HomeDirName is the runtime home directory name, e.g. python-3.6.8-embed-amd64.
func (c Config) HomeDirName() string {
	return fmt.Sprintf("python-%s-embed-%s", c.PythonVersion, c.Arch)
}

// StdlibArchiveName returns StdlibArchive or the name derived from the
// version, e.g. python36.zip.
func (c Config) StdlibArchiveName() string {
	if c.StdlibArchive != "" {
		return c.StdlibArchive
	}
	major, minor, _ := c.versionParts()
	return fmt.Sprintf("python%d%d.zip", major, minor)
}

// LibraryName returns Library or the platform default for the version.
func (c Config) LibraryName(goos string) string {
	if c.Library != "" {
		return c.Library
	}
	major, minor, _ := c.versionParts()
	switch goos {
	case "windows":
		return fmt.Sprintf("python%d%d.dll", major, minor)
	case "darwin":
		return fmt.Sprintf("lib/libpython%d.%d.dylib", major, minor)
	default:
		return fmt.Sprintf("lib/libpython%d.%d.so", major, minor)
	}
}

// InterpreterName returns Interpreter or the platform default.
func (c Config) InterpreterName(goos string) string {
	if c.Interpreter != "" {
		return c.Interpreter
	}
	if goos == "windows" {
		return "python.exe"
	}
	major, _, _ := c.versionParts()
	return fmt.Sprintf("bin/python%d", major)
}

func (c Config) versionParts() (int, int, error) {
	if c.PythonVersion == "" {
		return 0, 0, fmt.Errorf("python version is required")
	}
	parts := strings.Split(c.PythonVersion, ".")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("python version %q: want major.minor[.patch]", c.PythonVersion)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("python version %q: bad major: %w", c.PythonVersion, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("python version %q: bad minor: %w", c.PythonVersion, err)
	}
	return major, minor, nil
}

func checkRelative(name, p string) error {
	if p == "" {
		return nil
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return fmt.Errorf("%s %q must be relative", name, p)
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s %q escapes its base directory", name, p)
	}
	return nil
}
