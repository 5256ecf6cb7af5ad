// Package utils contains small helpers shared by the CLI entrypoint.
package utils

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// DeferredWriter buffers log lines while a full-screen program owns the
// terminal. Flush replays them to a real writer once the screen is released.
type DeferredWriter struct {
	mu    sync.Mutex
	lines [][]byte
}

// Write stores a copy of p. zerolog issues one Write per event, so each
// stored entry is a single JSON line.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lines = append(d.lines, bytes.Clone(p))
	return len(p), nil
}

// Len returns the number of buffered entries.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lines)
}

// Flush writes every buffered entry to w in order and empties the buffer.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	lines := d.lines
	d.lines = nil
	d.mu.Unlock()

	for _, line := range lines {
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("write deferred log: %w", err)
		}
	}
	return nil
}
