//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var launcherBinary string

func init() {
	if bin := os.Getenv("MELEE_LAUNCHER_BIN"); bin != "" {
		launcherBinary = bin
	} else {
		// Default to project root relative path
		launcherBinary = "../../build/melee-dat-editor"
	}
}

const entryScript = `import json, os, sys
with open("result.json", "w") as f:
    json.dump({"argv": sys.argv, "cwd": os.getcwd(), "path": sys.path}, f)
if "--exit" in sys.argv:
    sys.exit(int(sys.argv[sys.argv.index("--exit") + 1]))
`

type scriptResult struct {
	Argv []string `json:"argv"`
	Cwd  string   `json:"cwd"`
	Path []string `json:"path"`
}

// distribution lays out a launcher next to a runtime home and app dir the
// way the shipped bundle does. The runtime home links to an installed
// Python prefix given by MELEE_LAUNCHER_E2E_PREFIX.
type distribution struct {
	dir      string
	launcher string
	appDir   string
}

func newDistribution(t *testing.T, entry string) *distribution {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("distribution fixture links the runtime home, not supported on Windows")
	}
	prefix := os.Getenv("MELEE_LAUNCHER_E2E_PREFIX")
	if prefix == "" {
		t.Skip("Skipping launcher e2e test (set MELEE_LAUNCHER_E2E_PREFIX to a Python install prefix)")
	}
	if _, err := os.Stat(launcherBinary); err != nil {
		t.Skipf("launcher binary not built: %v", err)
	}

	dir := t.TempDir()
	d := &distribution{
		dir:      dir,
		launcher: filepath.Join(dir, "melee-dat-editor"),
		appDir:   filepath.Join(dir, "melee-dat-editor-app"),
	}

	copyFile(t, launcherBinary, d.launcher, 0o755)
	require.NoError(t, os.Symlink(prefix, filepath.Join(dir, "python-3.0-embed-e2e")))
	require.NoError(t, os.Mkdir(d.appDir, 0o755))
	if entry != "" {
		require.NoError(t, os.WriteFile(filepath.Join(d.appDir, entry), []byte(entryScript), 0o644))
	}

	cfg := `backend: exec
log-level: info
python:
  version: "3.0"
  arch: e2e
  platform-dir: ""
  packages: []
app:
  dir: melee-dat-editor-app
  entry: main.py
flags:
  ignore-environment: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launcher.yaml"), []byte(cfg), 0o644))
	return d
}

func (d *distribution) result(t *testing.T) scriptResult {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(d.appDir, "result.json"))
	require.NoError(t, err)
	var res scriptResult
	require.NoError(t, json.Unmarshal(data, &res))
	return res
}

// TestLauncherRunsEntryScript tests the full handoff to the entry script.
func TestLauncherRunsEntryScript(t *testing.T) {
	d := newDistribution(t, "main.py")

	// Run from elsewhere so the launcher has to find its own directory.
	out, code := runCommand(t, t.TempDir(), d.launcher, "--help", "PlFxNr.dat")
	require.Equal(t, 0, code, out)
	assert.NotContains(t, out, "Usage:")

	res := d.result(t)
	require.NotEmpty(t, res.Argv)
	assert.Equal(t, []string{"--help", "PlFxNr.dat"}, res.Argv[1:])

	appDir, err := filepath.EvalSymlinks(d.appDir)
	require.NoError(t, err)
	cwd, err := filepath.EvalSymlinks(res.Cwd)
	require.NoError(t, err)
	assert.Equal(t, appDir, cwd)
	assert.Contains(t, res.Path, appDir)
}

// TestLauncherExitCode tests that the script's exit status is the
// launcher's.
func TestLauncherExitCode(t *testing.T) {
	d := newDistribution(t, "main.py")

	out, code := runCommand(t, d.dir, d.launcher, "--exit", "7")
	assert.Equal(t, 7, code, out)
}

// TestLauncherMissingEntryScript tests the fatal exit when the app is
// missing its entry script.
func TestLauncherMissingEntryScript(t *testing.T) {
	d := newDistribution(t, "")

	out, code := runCommand(t, d.dir, d.launcher)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "entry script not found")
}

func copyFile(t *testing.T, src, dst string, mode os.FileMode) {
	t.Helper()
	in, err := os.Open(src)
	require.NoError(t, err)
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	require.NoError(t, err)
	_, err = io.Copy(out, in)
	require.NoError(t, err)
	require.NoError(t, out.Close())
}

func runCommand(t *testing.T, dir, name string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		output += stderr.String()
	}

	if err == nil {
		return output, 0
	}
	exitErr, ok := err.(*exec.ExitError)
	require.True(t, ok, "run %s: %v", name, err)
	return output, exitErr.ExitCode()
}
