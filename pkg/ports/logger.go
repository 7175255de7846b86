// Package ports defines the interfaces between the h264grab core and the
// outside world: the decoding engine, the filesystem, raster encoders, debug
// output and logging.
package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-unit details (NAL types, engine status flags).
	LevelDebug LogLevel = iota
	// LevelInfo is for run-level progress.
	LevelInfo
	// LevelWarn is for problems that do not stop the run.
	LevelWarn
	// LevelError is for problems that abort the run.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var logLevelNames = []string{"debug", "info", "warn", "error", "quiet"}

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelQuiet {
		return "unknown"
	}
	return logLevelNames[l]
}

// LogLevelNames lists the accepted level names in severity order.
func LogLevelNames() []string {
	return append([]string(nil), logLevelNames...)
}

// ParseLogLevel parses a string into a LogLevel.
// Unknown names fall back to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	for i, name := range logLevelNames {
		if s == name {
			return LogLevel(i)
		}
	}
	return LevelInfo
}

// Logger abstracts logging operations with multi-language support.
type Logger interface {
	// Debug logs a debug message. The msg parameter is a message key that
	// can be translated; args are applied after translation.
	Debug(msg string, args ...interface{})

	// Info logs an informational message.
	Info(msg string, args ...interface{})

	// Warn logs a warning message.
	Warn(msg string, args ...interface{})

	// Error logs an error message.
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the
	// component name (demux, session, engine, convert, output).
	WithComponent(component string) Logger
}
