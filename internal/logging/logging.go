// Package logging builds the zerolog logger used by the CLI and HTTP server
// and adapts it to core.Logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"dwellingcore/internal/core"
)

const permission = 0o664

// Builder assembles a logger from a writer or file path.
type Builder struct {
	writer io.Writer
	path   string
	level  string
}

// New starts a builder writing to stderr at info level.
func New() *Builder { return &Builder{writer: os.Stderr, level: "info"} }

// FromPath appends to the file at path instead of the writer.
func (b *Builder) FromPath(path string) *Builder {
	b.path = path
	return b
}

// FromWriter writes to w.
func (b *Builder) FromWriter(w io.Writer) *Builder {
	if w != nil {
		b.writer = w
	}
	return b
}

// Level sets the minimum level by name (debug, info, warn, error).
func (b *Builder) Level(level string) *Builder {
	b.level = level
	return b
}

// Logger is a core.Logger backed by zerolog. Close releases the log file, if any.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

var _ core.Logger = (*Logger)(nil)

// Make opens the destination and returns the logger.
func (b *Builder) Make() (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(b.level)))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	out := &Logger{}
	writer := b.writer
	if b.path != "" {
		out.file, err = os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		writer = zerolog.SyncWriter(out.file)
	}
	out.zl = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return out, nil
}

// Zerolog exposes the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

// Close closes the log file when the logger writes to one.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) Debug(msg string, args ...any) { l.emit(l.zl.Debug(), msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.emit(l.zl.Info(), msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.emit(l.zl.Warn(), msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.emit(l.zl.Error(), msg, args) }

// emit maps alternating key/value args onto event fields. A trailing key
// without a value is logged under "extra".
func (l *Logger) emit(ev *zerolog.Event, msg string, args []any) {
	if ev == nil {
		return
	}
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			ev = ev.Interface("extra", args[i])
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		switch v := args[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
