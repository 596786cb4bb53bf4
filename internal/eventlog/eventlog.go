// Package eventlog is the process-wide observability sink. It is created
// once per process, injected into each component at construction, and writes
// structured lines to logs/system.log and to the console.
//
// Line format:  TIMESTAMP | LEVEL | COMPONENT | MESSAGE
package eventlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Logger writes tagged log lines to a shared file and console sink.
// The zero value and a nil Logger are safe no-ops so components can be
// constructed without a sink in tests.
type Logger struct {
	sink      *sink
	component string
}

type sink struct {
	mu      sync.Mutex
	file    *os.File
	console io.Writer
	path    string
}

// New opens (or creates) <dir>/system.log and returns the root logger.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, "system.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		sink:      &sink{file: file, console: os.Stderr, path: path},
		component: "System",
	}, nil
}

// With returns a logger tagged with the given component name, sharing the
// parent's sink.
func (l *Logger) With(component string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{sink: l.sink, component: component}
}

// Infof records an informational event.
func (l *Logger) Infof(format string, args ...any) { l.record("INFO", format, args...) }

// Warnf records a warning event.
func (l *Logger) Warnf(format string, args ...any) { l.record("WARN", format, args...) }

// Errorf records an error event.
func (l *Logger) Errorf(format string, args ...any) { l.record("ERROR", format, args...) }

func (l *Logger) record(level, format string, args ...any) {
	if l == nil || l.sink == nil {
		return
	}

	line := fmt.Sprintf("%s | %-5s | %-10s | %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		level,
		l.component,
		fmt.Sprintf(format, args...),
	)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file != nil {
		_, _ = l.sink.file.WriteString(line)
	}
	if l.sink.console != nil {
		_, _ = io.WriteString(l.sink.console, line)
	}
}

// Tail returns the last n lines of the log file. The presentation layer
// reads this; it never mutates pipeline state.
func (l *Logger) Tail(n int) string {
	if l == nil || l.sink == nil || l.sink.path == "" {
		return ""
	}

	data, err := os.ReadFile(l.sink.path)
	if err != nil {
		return ""
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Close flushes and closes the underlying log file.
func (l *Logger) Close() error {
	if l == nil || l.sink == nil || l.sink.file == nil {
		return nil
	}
	return l.sink.file.Close()
}
