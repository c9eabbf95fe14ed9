// Package log configures slog for the binaries and carries a
// request-scoped logger through the context.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a slog.Logger tagged with a component.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	Output    io.Writer
	JSON      bool
}

func DefaultConfig() Config {
	return Config{Level: slog.LevelInfo, Component: ComponentApp, Output: os.Stdout}
}

func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	var h slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.JSON {
		h = slog.NewJSONHandler(out, opts)
	}
	component := cfg.Component
	if component == "" {
		component = ComponentApp
	}
	base := slog.New(h)
	return &Logger{Logger: base.With(FieldComponent, component), base: base, component: component}
}

// With returns a logger carrying args in addition to the current ones.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), base: l.base.With(args...), component: l.component}
}

// WithComponent returns a logger for another component. The new
// component replaces the old one in the output.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.base.With(FieldComponent, component),
		base:      l.base,
		component: component,
	}
}

func (l *Logger) Component() string { return l.component }

// SetDefault installs logger as the process default.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
