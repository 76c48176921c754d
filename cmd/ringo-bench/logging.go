package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// newLogger returns a logger writing colored records to w.
// Colors are disabled when w is not a terminal.
// When withOtel is set, the records are also sent to the OpenTelemetry logger provider.
func newLogger(w io.Writer, level slog.Level, withOtel bool) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
		if !noColor {
			w = colorable.NewColorable(f)
		}
	}

	handlers := []slog.Handler{
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    noColor,
		}),
	}

	if withOtel {
		handlers = append(handlers, otelslog.NewHandler(appName))
	}

	return slog.New(slogmulti.Fanout(handlers...))
}
