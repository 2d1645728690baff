package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/melee-dat-editor/launcher/internal/launcher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, launcher.DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `backend: exec
python:
  version: 3.8.10
  arch: win32
  platform-dir: ""
  packages:
    - pyside2
    - ruamel
app:
  dir: editor
  entry: main.py
flags:
  inspect: false
exit:
  teardown-code: 99
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launcher.yaml"), []byte(yaml), 0o644))

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, launcher.BackendExec, cfg.Backend)
	assert.Equal(t, "python-3.8.10-embed-win32", cfg.HomeDirName())
	assert.Equal(t, "python38.zip", cfg.StdlibArchiveName())
	assert.Empty(t, cfg.PlatformDir)
	assert.Equal(t, []string{"pyside2", "ruamel"}, cfg.PackageDirs)
	assert.Equal(t, "editor", cfg.AppDir)
	assert.Equal(t, "main.py", cfg.EntryScript)
	assert.True(t, cfg.Flags.NoSite)
	assert.False(t, cfg.Flags.Inspect)
	assert.Equal(t, 99, cfg.TeardownExitCode)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launcher.yaml"), []byte("app:\n  entry: main.py\n"), 0o644))
	t.Setenv("MELEE_LAUNCHER_APP_ENTRY", "debug.py")
	t.Setenv("MELEE_LAUNCHER_FLAGS_NO_SITE", "false")

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "debug.py", cfg.EntryScript)
	assert.False(t, cfg.Flags.NoSite)
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launcher.yaml"), []byte("app:\n  dir: ../outside\n"), 0o644))

	_, err := loadConfig(viper.New(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid launcher config")
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launcher.yaml"), []byte("app: [unclosed\n"), 0o644))

	_, err := loadConfig(viper.New(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfigureLoggingToFile(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})

	require.NoError(t, configureLogging("debug", "launcher.log", dir))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.Debug("runtime home resolved")

	data, err := os.ReadFile(filepath.Join(dir, "launcher.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "runtime home resolved")
}

func TestConfigureLoggingInvalidLevel(t *testing.T) {
	err := configureLogging("loud", "", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
