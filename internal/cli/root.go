// Package cli implements the melee-dat-editor launcher command.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/melee-dat-editor/launcher/internal/launcher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Launched from Explorer; cobra would otherwise print a console-only
	// hint and exit.
	cobra.MousetrapHelpText = ""
}

// NewRootCmd creates the launcher command. It has no flags of its own:
// every argument is passed to the application unchanged.
func NewRootCmd(version string) *cobra.Command {
	v := viper.New()
	var cfg launcher.Config

	rootCmd := &cobra.Command{
		Use:   "melee-dat-editor [file...]",
		Short: "Launch the Melee DAT editor with its bundled Python runtime",
		Long: `melee-dat-editor starts the Melee DAT editor using the Python runtime
shipped next to this executable.

The host's own Python installation and PYTHON* environment variables are
ignored. All arguments are forwarded to the editor, so files can be
opened from the command line, by drag and drop onto the icon, or through
a registered file type.

Launcher settings are read from launcher.yaml next to the executable and
from MELEE_LAUNCHER_* environment variables.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = initConfig(v)
			if err != nil {
				return err
			}
			logrus.Debugf("melee-dat-editor launcher %s", version)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLauncher(cfg, append([]string{programName()}, args...))
		},
	}

	return rootCmd
}

// Execute runs cmd with args. Cobra claims its shell-completion command
// names even when flag parsing is disabled, so those are handed to the
// application directly.
func Execute(cmd *cobra.Command, args []string) error {
	if len(args) > 0 && (args[0] == cobra.ShellCompRequestCmd || args[0] == cobra.ShellCompNoDescRequestCmd) {
		if err := cmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return cmd.RunE(cmd, args)
	}
	cmd.SetArgs(args)
	return cmd.Execute()
}

// programName is argv[0] as the OS passed it.
func programName() string {
	if len(os.Args) > 0 && os.Args[0] != "" {
		return os.Args[0]
	}
	return "melee-dat-editor"
}

func runLauncher(cfg launcher.Config, args []string) error {
	rt, err := launcher.NewRuntime(cfg.Backend)
	if err != nil {
		return &launcher.ExitError{Code: launcher.ExitFatal, Err: err}
	}

	code, err := launcher.New(cfg, rt).Run(args)
	if code == launcher.ExitOK && err == nil {
		return nil
	}
	return &launcher.ExitError{Code: code, Err: err}
}

// launcherDir is the directory of the running executable.
func launcherDir() (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: %w", launcher.ErrSelfPath, err)
	}
	if resolved, err := filepath.EvalSymlinks(self); err == nil {
		self = resolved
	}
	return filepath.Dir(self), nil
}
