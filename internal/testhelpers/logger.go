package testhelpers

import (
	"io"
	"log/slog"

	"github.com/myrjola/formtree/internal/logging"
)

// NewLogger returns a debug level logger writing to w, usually io.Discard.
func NewLogger(w io.Writer) *slog.Logger {
	return NewLoggerAt(w, slog.LevelDebug)
}

// NewLoggerAt returns a logger that writes records of at least level to w without timestamps, so that tests
// can assert on the output.
func NewLoggerAt(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: false,
		Level:     level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})))
}
