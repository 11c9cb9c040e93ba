package log

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Severity describes a log level.
type Severity uint32

// Message severities.
const (
	TraceLevel    Severity = 1
	DebugLevel    Severity = 2
	InfoLevel     Severity = 3
	WarningLevel  Severity = 4
	ErrorLevel    Severity = 5
	CriticalLevel Severity = 6
)

type logLine struct {
	msg       string
	level     Severity
	timestamp time.Time
	file      string
	line      int
}

var (
	logLevel = uint32(InfoLevel)

	writeLock sync.Mutex
	writer    = os.Stderr
)

// SetLogLevel sets a new log level.
func SetLogLevel(level Severity) {
	atomic.StoreUint32(&logLevel, uint32(level))
}

// GetLogLevel returns the current log level.
func GetLogLevel() Severity {
	return Severity(atomic.LoadUint32(&logLevel))
}

// ParseLevel returns the level severity of a log level name. It returns 0
// for unknown level names.
func ParseLevel(level string) Severity {
	switch strings.ToLower(level) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warning":
		return WarningLevel
	case "error":
		return ErrorLevel
	case "critical":
		return CriticalLevel
	}
	return 0
}

func fastcheck(level Severity) bool {
	return uint32(level) >= atomic.LoadUint32(&logLevel)
}

func log(level Severity, msg string) {
	now := time.Now()

	// caller of Tracef etc., two frames up
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = ""
		line = 0
	}

	writeLine(&logLine{
		msg:       msg,
		level:     level,
		timestamp: now,
		file:      file,
		line:      line,
	})
}

func writeLine(line *logLine) {
	writeLock.Lock()
	defer writeLock.Unlock()
	fmt.Fprintln(writer, formatLine(line))
}

// Trace logs a message at trace level.
func Trace(msg string) {
	if fastcheck(TraceLevel) {
		log(TraceLevel, msg)
	}
}

// Tracef logs a formatted message at trace level.
func Tracef(format string, things ...interface{}) {
	if fastcheck(TraceLevel) {
		log(TraceLevel, fmt.Sprintf(format, things...))
	}
}

// Debug logs a message at debug level.
func Debug(msg string) {
	if fastcheck(DebugLevel) {
		log(DebugLevel, msg)
	}
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, things ...interface{}) {
	if fastcheck(DebugLevel) {
		log(DebugLevel, fmt.Sprintf(format, things...))
	}
}

// Info logs a message at info level.
func Info(msg string) {
	if fastcheck(InfoLevel) {
		log(InfoLevel, msg)
	}
}

// Infof logs a formatted message at info level.
func Infof(format string, things ...interface{}) {
	if fastcheck(InfoLevel) {
		log(InfoLevel, fmt.Sprintf(format, things...))
	}
}

// Warning logs a message at warning level.
func Warning(msg string) {
	if fastcheck(WarningLevel) {
		log(WarningLevel, msg)
	}
}

// Warningf logs a formatted message at warning level.
func Warningf(format string, things ...interface{}) {
	if fastcheck(WarningLevel) {
		log(WarningLevel, fmt.Sprintf(format, things...))
	}
}

// Error logs a message at error level.
func Error(msg string) {
	if fastcheck(ErrorLevel) {
		log(ErrorLevel, msg)
	}
}

// Errorf logs a formatted message at error level.
func Errorf(format string, things ...interface{}) {
	if fastcheck(ErrorLevel) {
		log(ErrorLevel, fmt.Sprintf(format, things...))
	}
}

// Critical logs a message at critical level.
func Critical(msg string) {
	if fastcheck(CriticalLevel) {
		log(CriticalLevel, msg)
	}
}

// Criticalf logs a formatted message at critical level.
func Criticalf(format string, things ...interface{}) {
	if fastcheck(CriticalLevel) {
		log(CriticalLevel, fmt.Sprintf(format, things...))
	}
}
