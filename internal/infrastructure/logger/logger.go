package logger

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"go.opentelemetry.io/otel/trace"
)

// Level is the minimum severity that gets written
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu     sync.Mutex
	level  = LevelInfo
	output io.Writer = color.Output

	gray   = color.New(color.FgHiBlack)
	blue   = color.New(color.FgBlue)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	purple = color.New(color.FgMagenta)
	white  = color.New(color.FgWhite)
)

// ParseLevel converts debug, info, warn or error into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// SetLevel sets the minimum level written
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput redirects log output
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetColor enables or disables ANSI colors
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

func write(l Level, c *color.Color, prefix, message string) {
	mu.Lock()
	defer mu.Unlock()

	if l < level {
		return
	}

	timestamp := time.Now().Format("15:04:05")
	gray.Fprintf(output, "[%s] ", timestamp)
	c.Fprintf(output, "%s%s", prefix, message)
	fmt.Fprintln(output)
}

// Debug logs a development message (cyan)
func Debug(format string, args ...any) {
	write(LevelDebug, cyan, "DEBUG: ", fmt.Sprintf(format, args...))
}

// Info logs a general message (blue)
func Info(format string, args ...any) {
	write(LevelInfo, blue, "", fmt.Sprintf(format, args...))
}

// Success logs a completed step (green)
func Success(format string, args ...any) {
	write(LevelInfo, green, "✓ ", fmt.Sprintf(format, args...))
}

// Warning logs a recoverable problem (yellow)
func Warning(format string, args ...any) {
	write(LevelWarn, yellow, "⚠ ", fmt.Sprintf(format, args...))
}

// Error logs a failure (red)
func Error(format string, args ...any) {
	write(LevelError, red, "✗ ", fmt.Sprintf(format, args...))
}

// WithTrace logs at info level, prefixed with the trace id carried by ctx
func WithTrace(ctx context.Context, format string, args ...any) {
	Info("%s"+format, append([]any{tracePrefix(ctx)}, args...)...)
}

// ErrorWithTrace logs at error level, prefixed with the trace id carried by ctx
func ErrorWithTrace(ctx context.Context, format string, args ...any) {
	Error("%s"+format, append([]any{tracePrefix(ctx)}, args...)...)
}

func tracePrefix(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.HasTraceID() {
		return ""
	}
	return "trace_id=" + spanCtx.TraceID().String() + " "
}

// Request logs a served HTTP request, colored by status class
func Request(method, path string, statusCode int, duration time.Duration) {
	mu.Lock()
	defer mu.Unlock()

	if LevelInfo < level {
		return
	}

	var status *color.Color
	switch {
	case statusCode >= 200 && statusCode < 300:
		status = green
	case statusCode >= 300 && statusCode < 400:
		status = cyan
	case statusCode >= 400 && statusCode < 500:
		status = yellow
	default:
		status = red
	}

	gray.Fprintf(output, "[%s] ", time.Now().Format("15:04:05"))
	purple.Fprintf(output, "%-6s ", method)
	white.Fprintf(output, "%-40s ", path)
	status.Fprintf(output, "[%d] ", statusCode)
	gray.Fprintf(output, "(%s)", FormatDuration(duration))
	fmt.Fprintln(output)
}

// FormatDuration renders µs, ms or s depending on magnitude
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// Configure applies a level name and color setting in one call
func Configure(levelName string, colored bool) error {
	l, err := ParseLevel(levelName)
	if err != nil {
		return err
	}
	SetLevel(l)
	SetColor(colored)
	return nil
}
