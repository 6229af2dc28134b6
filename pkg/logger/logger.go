// Package logger configures structured logging on top of log/slog.
// It maps config strings to handlers and carries a few domain field helpers.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Format selects the log output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseLevel parses a string into a slog.Level. Unknown strings map to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat parses a string into a Format. Unknown strings map to JSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatText)) {
		return FormatText
	}
	return FormatJSON
}

// Options configures the logger.
type Options struct {
	// Level is the minimum level to emit.
	Level slog.Level

	// Format selects JSON or text output.
	Format Format

	// Output defaults to os.Stdout.
	Output io.Writer

	// AddSource records the file:line of the log call.
	AddSource bool
}

// DefaultOptions returns sensible defaults for the logger.
func DefaultOptions() Options {
	return Options{
		Level:  slog.LevelInfo,
		Format: FormatJSON,
		Output: os.Stdout,
	}
}

// New creates a new *slog.Logger with the given options.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	hopts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	switch opts.Format {
	case FormatText:
		handler = slog.NewTextHandler(opts.Output, hopts)
	default:
		handler = slog.NewJSONHandler(opts.Output, hopts)
	}

	return slog.New(handler)
}

// Setup creates a logger and installs it as the process default.
func Setup(opts Options) *slog.Logger {
	l := New(opts)
	slog.SetDefault(l)
	return l
}

// ─────────────────────────────────────────────────────────────────────────────
// Field helpers
// ─────────────────────────────────────────────────────────────────────────────

// Err creates an error attribute. A nil error logs as an empty string.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Domain field helpers used across the codebase.
func ApplicationID(id string) slog.Attr { return slog.String("application_id", id) }
func InternshipID(id string) slog.Attr  { return slog.String("internship_id", id) }
func StudentID(id string) slog.Attr     { return slog.String("student_id", id) }
func CompanyID(id string) slog.Attr     { return slog.String("company_id", id) }
func UserID(id string) slog.Attr        { return slog.String("user_id", id) }
func Component(name string) slog.Attr   { return slog.String("component", name) }
func Operation(name string) slog.Attr   { return slog.String("operation", name) }

// Latency creates a duration attribute in human-readable form.
func Latency(d time.Duration) slog.Attr { return slog.String("latency", d.String()) }
