package logging

import (
	"log/slog"
	"os"
)

// SetupJSON sets slog's default logger to use JSON output at the given level.
// Every record carries the service name so multiple binaries (api, migrator)
// can share one log stream.
func SetupJSON(level slog.Level, service string) {
	logger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	).With(slog.String("service", service))

	slog.SetDefault(logger)
}
