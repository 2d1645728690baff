package main

import (
	// Registers the interpreter-process backend.
	_ "github.com/melee-dat-editor/launcher/internal/process"
)
