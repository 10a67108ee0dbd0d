// Package notify delivers user-visible alerts.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(message string)
}

// Writer prints alerts to an io.Writer, typically stderr of the CLI.
type Writer struct {
	out io.Writer
	mu  sync.Mutex
}

// NewWriter creates a Writer notifier.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Alert writes the message on its own line.
func (w *Writer) Alert(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "mr-enhancer: %s\n", message)
}

// Recorder keeps alerts in memory until drained.
// The HTTP surface uses it to return alerts with the action result.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Alert records the message.
func (r *Recorder) Alert(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns a copy of the recorded alerts.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

// Drain returns the recorded alerts and forgets them.
func (r *Recorder) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}
