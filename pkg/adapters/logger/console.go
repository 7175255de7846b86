// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/h264grab/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

var levelColors = map[ports.LogLevel]string{
	ports.LevelDebug: colorGray,
	ports.LevelWarn:  colorYellow,
	ports.LevelError: colorRed,
}

// Uncolored output marks warnings and errors with a tag instead.
var levelTags = map[ports.LogLevel]string{
	ports.LevelWarn:  "warning",
	ports.LevelError: "error",
}

// ConsoleLogger writes diagnostics to a single stream, stderr by default.
// Stdout is left alone because it may carry the output raster.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	color     bool
	w         io.Writer
}

// NewConsole creates a logger on stderr. Color output is enabled when stderr
// is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	fd := os.Stderr.Fd()
	return &ConsoleLogger{
		level: level,
		color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		w:     os.Stderr,
	}
}

// NewWriter creates a console logger that writes uncolored lines to w.
func NewWriter(level ports.LogLevel, w io.Writer) *ConsoleLogger {
	return &ConsoleLogger{level: level, w: w}
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	l.log(ports.LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(msg string, args ...interface{}) {
	l.log(ports.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(msg string, args ...interface{}) {
	l.log(ports.LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(msg string, args ...interface{}) {
	l.log(ports.LevelError, msg, args...)
}

// WithComponent returns a logger tagged with component. Calling it on a
// component logger nests the names, as in [session/engine].
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	c := *l
	if l.component != "" && component != "" {
		c.component = l.component + "/" + component
	} else {
		c.component = component
	}
	return &c
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args ...interface{}) {
	if level < l.level {
		return
	}
	fmt.Fprintln(l.w, l.format(level, l10n.F(msg, args...)))
}

func (l *ConsoleLogger) format(level ports.LogLevel, text string) string {
	if !l.color {
		if tag, ok := levelTags[level]; ok {
			text = l10n.T(tag) + ": " + text
		}
		if l.component == "" {
			return text
		}
		return "[" + l.component + "] " + text
	}

	if l.component != "" {
		text = colorCyan + "[" + l.component + "]" + colorReset + " " + text
	}
	if c, ok := levelColors[level]; ok {
		text = c + text + colorReset
	}
	return text
}

var _ ports.Logger = (*ConsoleLogger)(nil)
