package launcher

import (
	"path/filepath"
	"strings"
)

// Layout is the set of filesystem paths derived from the launcher location.
// Nothing here is checked for existence; a missing directory surfaces when
// the runtime fails to load or import.
type Layout struct {
	Base          string
	Home          string
	StdlibArchive string
	Library       string
	Interpreter   string
	AppDir        string
	EntryScript   string

	// SearchPath is the module search path in lookup order.
	SearchPath []string
}

// Resolve derives the layout from the launcher's own path. goos selects the
// platform defaults for the library and interpreter names.
func Resolve(selfPath string, cfg Config, goos string) Layout {
	base := filepath.Dir(selfPath)
	home := filepath.Join(base, cfg.HomeDirName())
	appDir := filepath.Join(base, filepath.FromSlash(cfg.AppDir))

	l := Layout{
		Base:          base,
		Home:          home,
		StdlibArchive: filepath.Join(home, cfg.StdlibArchiveName()),
		Library:       filepath.Join(home, filepath.FromSlash(cfg.LibraryName(goos))),
		Interpreter:   filepath.Join(home, filepath.FromSlash(cfg.InterpreterName(goos))),
		AppDir:        appDir,
		EntryScript:   filepath.Join(appDir, filepath.FromSlash(cfg.EntryScript)),
	}

	l.SearchPath = append(l.SearchPath, home, l.StdlibArchive)
	if cfg.PlatformDir != "" {
		l.SearchPath = append(l.SearchPath, filepath.Join(home, filepath.FromSlash(cfg.PlatformDir)))
	}
	for _, dir := range cfg.PackageDirs {
		l.SearchPath = append(l.SearchPath, filepath.Join(home, filepath.FromSlash(dir)))
	}
	l.SearchPath = append(l.SearchPath, appDir)

	return l
}

// SearchPathString joins SearchPath with the OS list separator.
func (l Layout) SearchPathString() string {
	return strings.Join(l.SearchPath, string(filepath.ListSeparator))
}
