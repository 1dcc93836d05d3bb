// Package loggertest captures *logger.Logger output in memory for tests.
package loggertest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sync"

	"github.com/kbukum/svcapp/logger"
)

// Entry is one decoded JSON log line.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Recorder is an io.Writer that keeps every line written by a JSON logger.
type Recorder struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// New returns a debug-level JSON logger backed by a fresh Recorder.
func New(serviceName string) (*logger.Logger, *Recorder) {
	rec := &Recorder{}
	cfg := &logger.Config{Level: "debug", Format: logger.FormatJSON}
	return logger.NewWithWriter(cfg, serviceName, rec), rec
}

// Write implements io.Writer.
func (r *Recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Write(p)
}

// Entries decodes all lines written so far. Lines that are not JSON are skipped.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	data := append([]byte(nil), r.buf.Bytes()...)
	r.mu.Unlock()

	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var raw map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &raw); err != nil {
			continue
		}
		e := Entry{Fields: raw}
		e.Level, _ = raw["level"].(string)
		e.Message, _ = raw["message"].(string)
		entries = append(entries, e)
	}
	return entries
}

// Messages returns the message of every entry in write order.
func (r *Recorder) Messages() []string {
	entries := r.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

// Count returns how many entries have the given level and message.
// An empty message matches every entry of that level.
func (r *Recorder) Count(level, message string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level && (message == "" || e.Message == message) {
			n++
		}
	}
	return n
}

// Contains reports whether any entry has exactly the given message.
func (r *Recorder) Contains(message string) bool {
	for _, e := range r.Entries() {
		if e.Message == message {
			return true
		}
	}
	return false
}

// IndexOf returns the position of the first entry with the message, or -1.
func (r *Recorder) IndexOf(message string) int {
	for i, e := range r.Entries() {
		if e.Message == message {
			return i
		}
	}
	return -1
}

// InOrder reports whether the messages appear in the given relative order.
// Other entries may be interleaved.
func (r *Recorder) InOrder(messages ...string) bool {
	next := 0
	for _, e := range r.Entries() {
		if next < len(messages) && e.Message == messages[next] {
			next++
		}
	}
	return next == len(messages)
}
