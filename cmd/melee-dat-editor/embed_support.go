//go:build darwin || freebsd || linux || netbsd || windows

package main

import (
	// Registers the in-process runtime backend.
	_ "github.com/melee-dat-editor/launcher/internal/embed"
)
