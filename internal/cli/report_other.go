//go:build !windows

package cli

// reportFatal is a no-op; the error has already been logged to stderr.
func reportFatal(error) {}
