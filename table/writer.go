package table

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// Writer appends keyed records to an archive. Each record is encoded into
// memory first and written to the file only on success, so a failed encode
// leaves no partial record behind.
type Writer[T any] struct {
	f    *os.File
	buf  bytes.Buffer
	enc  *gob.Encoder
	seen map[string]struct{}
}

// NewWriter creates (truncating) an archive for writing.
func NewWriter[T any](spec string) (*Writer[T], error) {
	path := archivePath(spec)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive %s: %w", path, err)
	}
	w := &Writer[T]{f: f, seen: make(map[string]struct{})}
	w.enc = gob.NewEncoder(&w.buf)
	return w, nil
}

// Write appends one record. Duplicate keys are rejected: downstream
// random-access readers could not tell the two records apart.
func (w *Writer[T]) Write(key string, v T) error {
	if _, dup := w.seen[key]; dup {
		return fmt.Errorf("duplicate key %q", key)
	}
	w.buf.Reset()
	if err := w.enc.Encode(record[T]{Key: key, Value: v}); err != nil {
		// Partial bytes stay in the buffer and are discarded by the
		// next Reset; the file is untouched.
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	if _, err := w.f.Write(w.buf.Bytes()); err != nil {
		return fmt.Errorf("write record %q: %w", key, err)
	}
	w.seen[key] = struct{}{}
	return nil
}

// Close flushes and closes the archive.
func (w *Writer[T]) Close() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
