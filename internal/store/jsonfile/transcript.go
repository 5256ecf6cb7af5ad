// Package jsonfile writes conversation exports as JSON files.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/palaver/internal/core/chat"
)

// Transcript is the on-disk export format.
type Transcript struct {
	ExportedAt time.Time           `json:"exported_at"`
	Provider   string              `json:"provider,omitempty"`
	Model      string              `json:"model,omitempty"`
	Messages   []TranscriptMessage `json:"messages"`
}

// TranscriptMessage is one exported message. Only the display text is kept;
// provider-native responses are not serialized.
type TranscriptMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptWriter exports conversations into a directory. Exports are
// write-only; nothing reads them back into a session.
type TranscriptWriter struct {
	dir string
	now func() time.Time
}

// NewTranscriptWriter creates a writer targeting dir.
func NewTranscriptWriter(dir string) *TranscriptWriter {
	return &TranscriptWriter{dir: dir, now: time.Now}
}

// WithClock overrides the time source used for file names and export time.
func (w *TranscriptWriter) WithClock(now func() time.Time) *TranscriptWriter {
	w.now = now
	return w
}

// Save writes msgs to a new timestamped file and returns its path.
func (w *TranscriptWriter) Save(_ context.Context, provider, model string, msgs []chat.Message) (string, error) {
	now := w.now()

	t := Transcript{
		ExportedAt: now,
		Provider:   provider,
		Model:      model,
		Messages:   make([]TranscriptMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		t.Messages = append(t.Messages, TranscriptMessage{
			ID:        m.ID,
			Sender:    string(m.Sender),
			Content:   m.Text(),
			Timestamp: m.Timestamp,
		})
	}

	name := "transcript-" + now.Format("20060102-150405.000") + ".json"
	path := filepath.Join(w.dir, name)

	if err := writeJSONAtomic(w.dir, path, t); err != nil {
		return "", err
	}
	return path, nil
}

// writeJSONAtomic marshals v and writes it to path via a temp file rename.
func writeJSONAtomic(dir, path string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
