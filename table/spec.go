// Package table implements keyed record archives: sequential and
// random-access readers plus per-record atomic writers. An archive is a
// gob stream of (key, value) records; specifiers name one with an
// optional "ark:" prefix.
package table

import (
	"errors"
	"strings"
)

// ErrKeyNotFound distinguishes a missing key from end-of-data or I/O
// failure in random-access lookups.
var ErrKeyNotFound = errors.New("key not found")

// SpecKind classifies an input specifier.
type SpecKind int

const (
	// SpecFile is a plain file path holding a single object.
	SpecFile SpecKind = iota
	// SpecTable is a keyed archive of objects.
	SpecTable
)

// ClassifySpec decides whether a specifier names a single file or a keyed
// archive, and returns the underlying path. Called once at startup; the
// decode loop never re-classifies.
func ClassifySpec(spec string) (SpecKind, string) {
	if p, ok := strings.CutPrefix(spec, "ark:"); ok {
		return SpecTable, p
	}
	return SpecFile, spec
}

// archivePath strips an optional "ark:" prefix from a specifier.
func archivePath(spec string) string {
	_, p := ClassifySpec(spec)
	return p
}
