package main

import (
	"os"

	"github.com/rs/zerolog"
)

// newLogger builds the process-wide logger: a console writer over
// stderr when stderr is a TTY, plain JSON otherwise, with fatal lines
// prefixed "[!]" to match the diagnostic style of the tool this one
// replaces.
func newLogger() zerolog.Logger {
	var w zerolog.ConsoleWriter
	if isTerminal(os.Stderr) {
		w = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = os.Stderr
		})
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func fatal(logger zerolog.Logger, err error) {
	logger.Error().Msg("[!] " + err.Error())
	os.Exit(1)
}
