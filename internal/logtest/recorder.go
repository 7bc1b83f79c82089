// Package logtest records diagnostic lines so tests can assert on them.
package logtest

import (
	"fmt"
	"strings"
	"sync"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type Entry struct {
	Level   Level
	Message string
}

// Recorder is a flock.Logger keeping every formatted line in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Debugf(format string, args ...any) { r.add(LevelDebug, format, args) }
func (r *Recorder) Warnf(format string, args ...any)  { r.add(LevelWarn, format, args) }
func (r *Recorder) Errorf(format string, args ...any) { r.add(LevelError, format, args) }

func (r *Recorder) add(level Level, format string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Lines returns the messages logged at level, oldest first.
func (r *Recorder) Lines(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Errors is Lines(LevelError).
func (r *Recorder) Errors() []string { return r.Lines(LevelError) }

// Warnings is Lines(LevelWarn).
func (r *Recorder) Warnings() []string { return r.Lines(LevelWarn) }

// Contains reports whether a line at level contains substr.
func (r *Recorder) Contains(level Level, substr string) bool {
	for _, line := range r.Lines(level) {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// Reset forgets every recorded line.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
