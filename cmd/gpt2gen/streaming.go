package main

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// StreamWriter prints generated fragments as they arrive, spaced exactly
// like the final joined text.
type StreamWriter struct {
	mu      sync.Mutex
	buffer  *bufio.Writer
	started bool
}

func NewStreamWriter(w io.Writer, prompt string) *StreamWriter {
	sw := &StreamWriter{buffer: bufio.NewWriterSize(w, 4096)}
	if prompt != "" {
		_, _ = sw.buffer.WriteString(prompt)
		sw.started = true
	}
	return sw
}

// Write handles a single decoded token.
func (w *StreamWriter) Write(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		_ = w.buffer.WriteByte(' ')
	}
	_, _ = w.buffer.WriteString(fragment)
	w.started = true
	_ = w.buffer.Flush()
}

// Close terminates the line and flushes.
func (w *StreamWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.buffer.WriteByte('\n')
	return w.buffer.Flush()
}
