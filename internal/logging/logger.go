package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures New.
type Options struct {
	Level  string    // debug, info, warn or error; default info
	Format string    // text or json; default text
	Output io.Writer // default os.Stderr
}

// New creates a configured application logger.
// It writes to Stderr by default, keeping Stdout free for reports and the MCP
// stdio transport. It standardizes common keys ("error" -> "err").
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}

	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name to slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Printf adapts a slog.Logger to the printf-style progress logger the
// analysis pipeline reports to.
type Printf struct {
	Logger *slog.Logger
}

func (p Printf) Infof(format string, args ...any) {
	p.Logger.Info(fmt.Sprintf(format, args...))
}

func (p Printf) Warnf(format string, args ...any) {
	p.Logger.Warn(fmt.Sprintf(format, args...))
}

func (p Printf) Errorf(format string, args ...any) {
	p.Logger.Error(fmt.Sprintf(format, args...))
}
