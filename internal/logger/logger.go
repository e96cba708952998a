package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level. Unknown values map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// ValidLevel reports whether s names a known level.
func ValidLevel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
		return true
	}
	return false
}

// sink is shared by a logger and every logger derived from it so that
// concurrent writers never interleave partial lines.
type sink struct {
	mu  sync.Mutex
	out io.Writer
}

// Logger is a leveled logger with an optional prefix and key/value fields.
type Logger struct {
	sink     *sink
	level    Level
	prefix   string
	fields   map[string]any
	colorize bool
	json     bool
	now      func() time.Time
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput sets the output destination.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.sink = &sink{out: w}
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(l *Logger) {
		l.level = level
	}
}

// WithPrefix sets a prefix for log messages.
func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.prefix = prefix
	}
}

// WithColors enables or disables colorized level names. Ignored in JSON mode.
func WithColors(enabled bool) Option {
	return func(l *Logger) {
		l.colorize = enabled
	}
}

// WithJSON switches the output to one JSON object per line.
func WithJSON(enabled bool) Option {
	return func(l *Logger) {
		l.json = enabled
	}
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// New creates a new Logger with the given options.
func New(opts ...Option) *Logger {
	l := &Logger{
		sink:     &sink{out: os.Stdout},
		level:    INFO,
		fields:   map[string]any{},
		colorize: true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLogger = New()

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// Level returns the minimum level this logger writes.
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) clone() *Logger {
	c := *l
	c.fields = make(map[string]any, len(l.fields))
	for k, v := range l.fields {
		c.fields[k] = v
	}
	return &c
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	c := l.clone()
	c.fields[key] = value
	return c
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

// WithPrefix returns a new logger with the given prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	c := l.clone()
	c.prefix = prefix
	return c
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if level < l.level {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	caller := ""
	if _, file, line, ok := runtime.Caller(2); ok {
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		caller = fmt.Sprintf("%s:%d", file, line)
	}

	var line string
	if l.json {
		line = l.formatJSON(level, caller, msg)
	} else {
		line = l.formatText(level, caller, msg)
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	fmt.Fprint(l.sink.out, line)
}

func (l *Logger) sortedKeys() []string {
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (l *Logger) formatText(level Level, caller, msg string) string {
	var sb strings.Builder
	sb.WriteString(l.now().Format("2006-01-02 15:04:05.000"))
	sb.WriteString(" ")
	if l.colorize {
		sb.WriteString(colorize(level))
	} else {
		sb.WriteString(fmt.Sprintf("%-5s", level.String()))
	}
	sb.WriteString(" ")
	if l.prefix != "" {
		sb.WriteString("[" + l.prefix + "] ")
	}
	if caller != "" {
		sb.WriteString("[" + caller + "] ")
	}
	sb.WriteString(msg)
	for _, k := range l.sortedKeys() {
		sb.WriteString(fmt.Sprintf(" %s=%v", k, l.fields[k]))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (l *Logger) formatJSON(level Level, caller, msg string) string {
	entry := make(map[string]any, len(l.fields)+5)
	for k, v := range l.fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}
	entry["time"] = l.now().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg
	if l.prefix != "" {
		entry["component"] = l.prefix
	}
	if caller != "" {
		entry["caller"] = caller
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":%q,"msg":%q,"marshal_error":%q}`+"\n", level.String(), msg, err.Error())
	}
	return string(b) + "\n"
}

func colorize(level Level) string {
	var color string
	switch level {
	case DEBUG:
		color = "\033[36m"
	case INFO:
		color = "\033[32m"
	case WARN:
		color = "\033[33m"
	case ERROR:
		color = "\033[31m"
	default:
		color = "\033[0m"
	}
	return fmt.Sprintf("%s%-5s\033[0m", color, level.String())
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	l.log(ERROR, msg, args...)
}

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

type ctxKey struct{}

// FromContext returns the logger from the context, or the default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return defaultLogger
}

// NewContext returns a new context with the given logger.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
