// This file is part of citrine3ds.
//
// citrine3ds is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// citrine3ds is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with citrine3ds.  If not, see <https://www.gnu.org/licenses/>.

// Package logger provides a fixed-capacity, permission-gated log of
// tagged entries. The runtime orchestrator writes the guest's
// OutputDebugString messages here, and the CLI drains the log to
// stderr on exit.
package logger

import (
	"fmt"
	"io"
	"sync"
)

// Permission is implemented by anything that can decide whether a log
// entry should actually be recorded. environment.Environment is the
// usual implementer.
type Permission interface {
	AllowLogging() bool
}

// Allow is a Permission that always allows logging.
var Allow = allowPermission{}

type allowPermission struct{}

func (allowPermission) AllowLogging() bool { return true }

type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s", e.tag, e.detail)
}

// Logger is a ring buffer of log entries.
type Logger struct {
	mu      sync.Mutex
	entries []entry
	size    int
}

// NewLogger creates a Logger that retains at most size entries,
// discarding the oldest when full.
func NewLogger(size int) *Logger {
	return &Logger{
		entries: make([]entry, 0, size),
		size:    size,
	}
}

func renderDetail(detail interface{}) string {
	switch v := detail.(type) {
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Log appends a new entry if permission allows it.
func (l *Logger) Log(permission Permission, tag string, detail interface{}) {
	if !permission.AllowLogging() {
		return
	}
	l.append(tag, renderDetail(detail))
}

// Logf is like Log but formats detail with fmt.Sprintf.
func (l *Logger) Logf(permission Permission, tag string, format string, args ...interface{}) {
	if !permission.AllowLogging() {
		return
	}
	l.append(tag, fmt.Sprintf(format, args...))
}

func (l *Logger) append(tag string, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.size {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, entry{tag: tag, detail: detail})
}

// Write dumps every retained entry to w, one per line.
func (l *Logger) Write(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		fmt.Fprintf(w, "%s\n", e)
	}
}

// Tail dumps the last n entries to w, one per line. If n is larger
// than the number of retained entries, every entry is written.
func (l *Logger) Tail(w io.Writer, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}
	for _, e := range l.entries[len(l.entries)-n:] {
		fmt.Fprintf(w, "%s\n", e)
	}
}

// Clear empties the logger.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}
