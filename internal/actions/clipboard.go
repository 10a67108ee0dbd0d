package actions

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard is the operating system clipboard.
type SystemClipboard struct{}

// WriteAll copies text to the system clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// MemoryClipboard holds the last copied text until taken. The HTTP
// surface returns it to the browser, which owns the real clipboard.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
	set  bool
}

// WriteAll stores text.
func (m *MemoryClipboard) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text, m.set = text, true
	return nil
}

// Take returns the stored text and clears it. ok is false when nothing
// was copied since the last Take.
func (m *MemoryClipboard) Take() (text string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok = m.text, m.set
	m.text, m.set = "", false
	return text, ok
}
