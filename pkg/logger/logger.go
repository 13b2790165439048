package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to its LogLevel. Unknown names yield INFO and
// false.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "FATAL":
		return FATAL, true
	}
	return INFO, false
}

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorMagenta = "\033[35m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorGray    = "\033[90m"
)

// sink is shared between a logger and the children derived from it so that
// concurrent sessions never interleave partial lines.
type sink struct {
	mu  sync.Mutex
	out io.Writer
}

type Logger struct {
	sink       *sink
	mu         sync.RWMutex
	level      LogLevel
	prefix     string
	colorize   bool
	showCaller bool
	showTime   bool
	timeFormat string
	exit       func(int)
}

var (
	defaultLogger *Logger
	once          sync.Once
)

type Config struct {
	Level      LogLevel
	Prefix     string
	Colorize   bool
	ShowCaller bool
	ShowTime   bool
	TimeFormat string
	Output     io.Writer
}

// DefaultConfig logs to stderr; stdout is reserved for tablature output.
func DefaultConfig() Config {
	return Config{
		Level:      INFO,
		Prefix:     "",
		Colorize:   true,
		ShowCaller: false,
		ShowTime:   true,
		TimeFormat: "2006-01-02 15:04:05",
		Output:     os.Stderr,
	}
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "2006-01-02 15:04:05"
	}

	return &Logger{
		sink:       &sink{out: cfg.Output},
		level:      cfg.Level,
		prefix:     cfg.Prefix,
		colorize:   cfg.Colorize,
		showCaller: cfg.ShowCaller,
		showTime:   cfg.ShowTime,
		timeFormat: cfg.TimeFormat,
		exit:       os.Exit,
	}
}

// GetLogger returns the process-wide logger. Its level comes from
// AUTOTAB_LOG_LEVEL, falling back to LOG_LEVEL.
func GetLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()
		for _, key := range []string{"AUTOTAB_LOG_LEVEL", "LOG_LEVEL"} {
			if lvl, ok := ParseLevel(os.Getenv(key)); ok {
				cfg.Level = lvl
				break
			}
		}
		defaultLogger = New(cfg)
	})
	return defaultLogger
}

// WithPrefix returns a child logger that writes to the same output with
// prefix appended to the parent's.
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p := prefix
	if l.prefix != "" {
		p = l.prefix + " " + prefix
	}
	return &Logger{
		sink:       l.sink,
		level:      l.level,
		prefix:     p,
		colorize:   l.colorize,
		showCaller: l.showCaller,
		showTime:   l.showTime,
		timeFormat: l.timeFormat,
		exit:       l.exit,
	}
}

func (l *Logger) Level() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.out = w
}

func (l *Logger) SetColorize(colorize bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colorize = colorize
}

func (l *Logger) SetShowCaller(show bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showCaller = show
}

func (l *Logger) SetShowTime(show bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showTime = show
}

func levelColor(level LogLevel) string {
	switch level {
	case DEBUG:
		return colorGray
	case INFO:
		return colorBlue
	case WARN:
		return colorYellow
	case ERROR:
		return colorRed
	default:
		return colorMagenta
	}
}

func (l *Logger) formatMessage(level LogLevel, msg string, args ...any) string {
	var parts []string

	if l.showTime {
		parts = append(parts, time.Now().Format(l.timeFormat))
	}

	levelStr := "[" + level.String() + "]"
	if l.colorize {
		levelStr = levelColor(level) + levelStr + colorReset
	}
	parts = append(parts, levelStr)

	if l.showCaller {
		if _, file, line, ok := runtime.Caller(3); ok {
			if idx := strings.LastIndex(file, "/"); idx >= 0 {
				file = file[idx+1:]
			}
			parts = append(parts, fmt.Sprintf("%s:%d", file, line))
		}
	}

	if l.prefix != "" {
		parts = append(parts, l.prefix)
	}

	if len(args) > 0 {
		parts = append(parts, fmt.Sprintf(msg, args...))
	} else {
		parts = append(parts, msg)
	}

	return strings.Join(parts, " ")
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	l.mu.RLock()
	if level < l.level {
		l.mu.RUnlock()
		return
	}
	line := l.formatMessage(level, msg, args...)
	exit := l.exit
	l.mu.RUnlock()

	l.sink.mu.Lock()
	fmt.Fprintln(l.sink.out, line)
	l.sink.mu.Unlock()

	if level == FATAL {
		exit(1)
	}
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(msg string, args ...any) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level
func (l *Logger) Info(msg string, args ...any) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level
func (l *Logger) Warn(msg string, args ...any) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level
func (l *Logger) Error(msg string, args ...any) {
	l.log(ERROR, msg, args...)
}

// Fatal logs a message at FATAL level and exits the program
func (l *Logger) Fatal(msg string, args ...any) {
	l.log(FATAL, msg, args...)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(DEBUG, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(INFO, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(WARN, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(ERROR, format, args...) }
func (l *Logger) Fatalf(format string, args ...any) { l.log(FATAL, format, args...) }

// Package-level convenience functions using the default logger

func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }
func Info(msg string, args ...any)  { GetLogger().Info(msg, args...) }
func Warn(msg string, args ...any)  { GetLogger().Warn(msg, args...) }
func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }
func Fatal(msg string, args ...any) { GetLogger().Fatal(msg, args...) }

func Debugf(format string, args ...any) { GetLogger().Debugf(format, args...) }
func Infof(format string, args ...any)  { GetLogger().Infof(format, args...) }
func Warnf(format string, args ...any)  { GetLogger().Warnf(format, args...) }
func Errorf(format string, args ...any) { GetLogger().Errorf(format, args...) }
func Fatalf(format string, args ...any) { GetLogger().Fatalf(format, args...) }

// SetLevel sets the log level for the default logger
func SetLevel(level LogLevel) {
	GetLogger().SetLevel(level)
}

// SetOutput sets the output for the default logger
func SetOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}

// SetColorize enables or disables colored output for the default logger
func SetColorize(colorize bool) {
	GetLogger().SetColorize(colorize)
}

// SetShowTime enables or disables timestamps for the default logger
func SetShowTime(show bool) {
	GetLogger().SetShowTime(show)
}
