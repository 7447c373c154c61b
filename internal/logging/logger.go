package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger builds a tint-backed logger writing to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level <= slog.LevelDebug,
		NoColor:    w != os.Stdout,
	})
	return slog.New(handler)
}

// InitLogger installs the stdout logger as the slog default.
func InitLogger(level slog.Level) {
	slog.SetDefault(NewLogger(os.Stdout, level))
}
