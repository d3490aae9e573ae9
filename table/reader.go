package table

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
)

// record is the on-disk unit of an archive.
type record[T any] struct {
	Key   string
	Value T
}

// SequentialReader iterates an archive in file order, one record at a
// time. Usage follows the bufio.Scanner pattern:
//
//	for r.Next() { use r.Key(), r.Value() }
//	if err := r.Err(); err != nil { ... }
type SequentialReader[T any] struct {
	f   *os.File
	dec *gob.Decoder
	cur record[T]
	err error
}

// OpenSequential opens an archive for sequential reading.
func OpenSequential[T any](spec string) (*SequentialReader[T], error) {
	path := archivePath(spec)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return &SequentialReader[T]{f: f, dec: gob.NewDecoder(f)}, nil
}

// Next advances to the next record. It returns false at end of data or on
// a decode error; the two are distinguished by Err.
func (r *SequentialReader[T]) Next() bool {
	if r.err != nil {
		return false
	}
	var rec record[T]
	if err := r.dec.Decode(&rec); err != nil {
		if !errors.Is(err, io.EOF) {
			r.err = err
		}
		return false
	}
	r.cur = rec
	return true
}

// Key returns the key of the current record.
func (r *SequentialReader[T]) Key() string { return r.cur.Key }

// Value returns the value of the current record. The caller owns it until
// the next call to Next.
func (r *SequentialReader[T]) Value() T { return r.cur.Value }

// Err returns the first decode error, nil on clean end of data.
func (r *SequentialReader[T]) Err() error { return r.err }

// Close closes the underlying file.
func (r *SequentialReader[T]) Close() error { return r.f.Close() }

// RandomAccessReader answers keyed lookups over an archive. The whole
// archive is read into memory at open; noise-parameter and feature tables
// sized for one decoding run fit comfortably.
type RandomAccessReader[T any] struct {
	m map[string]T
}

// OpenRandomAccess loads an archive for keyed access.
func OpenRandomAccess[T any](spec string) (*RandomAccessReader[T], error) {
	sr, err := OpenSequential[T](spec)
	if err != nil {
		return nil, err
	}
	defer sr.Close()

	m := make(map[string]T)
	for sr.Next() {
		if _, dup := m[sr.Key()]; dup {
			return nil, fmt.Errorf("archive %s: duplicate key %q", archivePath(spec), sr.Key())
		}
		m[sr.Key()] = sr.Value()
	}
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("read archive %s: %w", archivePath(spec), err)
	}
	return &RandomAccessReader[T]{m: m}, nil
}

// HasKey reports whether the archive holds a record for key.
func (r *RandomAccessReader[T]) HasKey(key string) bool {
	_, ok := r.m[key]
	return ok
}

// Value returns the record for key, or ErrKeyNotFound.
func (r *RandomAccessReader[T]) Value(key string) (T, error) {
	v, ok := r.m[key]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return v, nil
}
