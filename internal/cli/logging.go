package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// configureLogging sets the logrus level and destination. A GUI launch has
// no usable stderr, so logFile (relative to dir) can capture the output.
func configureLogging(levelName, logFile, dir string) error {
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)

	out := os.Stderr
	if logFile != "" {
		if !filepath.IsAbs(logFile) {
			logFile = filepath.Join(dir, logFile)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		// Left open for the life of the process.
		out = f
	}
	logrus.SetOutput(out)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: !term.IsTerminal(int(out.Fd())),
	})
	return nil
}
