// Package main is the entry point for the Melee DAT Editor launcher.
// It starts the bundled Python runtime shipped next to the executable and
// runs the editor's entry script inside it.
package main

import (
	"os"

	"github.com/melee-dat-editor/launcher/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	if err := cli.Execute(rootCmd, os.Args[1:]); err != nil {
		os.Exit(cli.HandleError(err))
	}
}
