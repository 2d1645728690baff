package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/melee-dat-editor/launcher/internal/launcher"
	"github.com/spf13/viper"
)

// Configuration keys. Environment variables use the MELEE_LAUNCHER_ prefix
// with dots and dashes turned into underscores, e.g.
// MELEE_LAUNCHER_PYTHON_VERSION.
const (
	keyLogLevel         = "log-level"
	keyLogFile          = "log-file"
	keyBackend          = "backend"
	keyPythonVersion    = "python.version"
	keyPythonArch       = "python.arch"
	keyPythonStdlib     = "python.stdlib"
	keyPythonPlatform   = "python.platform-dir"
	keyPythonPackages   = "python.packages"
	keyPythonLibrary    = "python.library"
	keyPythonInterp     = "python.interpreter"
	keyAppDir           = "app.dir"
	keyAppEntry         = "app.entry"
	keyFlagNoSite       = "flags.no-site"
	keyFlagIgnoreEnv    = "flags.ignore-environment"
	keyFlagInspect      = "flags.inspect"
	keyLibraryEnvVar    = "env.library-var"
	keyTeardownExitCode = "exit.teardown-code"
)

const (
	configName = "launcher"
	envPrefix  = "MELEE_LAUNCHER"
)

func setDefaults(v *viper.Viper) {
	def := launcher.DefaultConfig()

	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keyBackend, def.Backend)
	v.SetDefault(keyPythonVersion, def.PythonVersion)
	v.SetDefault(keyPythonArch, def.Arch)
	v.SetDefault(keyPythonStdlib, def.StdlibArchive)
	v.SetDefault(keyPythonPlatform, def.PlatformDir)
	v.SetDefault(keyPythonPackages, def.PackageDirs)
	v.SetDefault(keyPythonLibrary, def.Library)
	v.SetDefault(keyPythonInterp, def.Interpreter)
	v.SetDefault(keyAppDir, def.AppDir)
	v.SetDefault(keyAppEntry, def.EntryScript)
	v.SetDefault(keyFlagNoSite, def.Flags.NoSite)
	v.SetDefault(keyFlagIgnoreEnv, def.Flags.IgnoreEnvironment)
	v.SetDefault(keyFlagInspect, def.Flags.Inspect)
	v.SetDefault(keyLibraryEnvVar, def.LibraryEnvVar)
	v.SetDefault(keyTeardownExitCode, def.TeardownExitCode)
}

// loadConfig reads launcher.yaml from dir, if present, and the
// environment, on top of the built-in defaults.
func loadConfig(v *viper.Viper, dir string) (launcher.Config, error) {
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return launcher.Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := launcher.Config{
		PythonVersion: v.GetString(keyPythonVersion),
		Arch:          v.GetString(keyPythonArch),
		StdlibArchive: v.GetString(keyPythonStdlib),
		PlatformDir:   v.GetString(keyPythonPlatform),
		PackageDirs:   v.GetStringSlice(keyPythonPackages),
		Library:       v.GetString(keyPythonLibrary),
		Interpreter:   v.GetString(keyPythonInterp),
		AppDir:        v.GetString(keyAppDir),
		EntryScript:   v.GetString(keyAppEntry),
		Flags: launcher.Flags{
			NoSite:            v.GetBool(keyFlagNoSite),
			IgnoreEnvironment: v.GetBool(keyFlagIgnoreEnv),
			Inspect:           v.GetBool(keyFlagInspect),
		},
		LibraryEnvVar:    v.GetString(keyLibraryEnvVar),
		Backend:          v.GetString(keyBackend),
		TeardownExitCode: v.GetInt(keyTeardownExitCode),
	}

	if err := cfg.Validate(); err != nil {
		return launcher.Config{}, fmt.Errorf("invalid launcher config: %w", err)
	}
	return cfg, nil
}

// initConfig loads the configuration from the launcher's directory and
// sets up logging.
func initConfig(v *viper.Viper) (launcher.Config, error) {
	dir, err := launcherDir()
	if err != nil {
		return launcher.Config{}, err
	}

	cfg, err := loadConfig(v, dir)
	if err != nil {
		return launcher.Config{}, err
	}

	if err := configureLogging(v.GetString(keyLogLevel), v.GetString(keyLogFile), dir); err != nil {
		return launcher.Config{}, err
	}
	return cfg, nil
}
