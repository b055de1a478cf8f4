// Package store persists habitat layouts. A layout document is a JSON
// array of module records; the same document shape is used for named save
// slots, file export, and file import.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kferr/habkit/pkg/habitat"
)

// DefaultSlot is the slot used by the Save/Load buttons.
const DefaultSlot = "habitat-layout"

// ExportFilename is the default name offered when exporting to a file.
const ExportFilename = "habitat-layout.json"

// DecodeError wraps a failure to decode a layout document. Callers branch
// on it to show the user-facing import error while leaving state untouched.
type DecodeError struct {
	Source string // slot name or file path
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode layout from %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Store reads and writes layout documents under a single directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created on first
// save, not here, so constructing a store never fails.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// slotPath maps a slot name to its file. Slot names are flattened so a
// name can never escape the store directory.
func (s *Store) slotPath(slot string) string {
	slot = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, slot)
	return filepath.Join(s.dir, slot+".json")
}

// Save serializes modules to the named slot, overwriting any prior value.
func (s *Store) Save(slot string, modules []habitat.Module) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	return writeDocument(s.slotPath(slot), modules)
}

// Load reads the named slot. A missing slot is not an error: found is
// false and the caller leaves its registry alone.
func (s *Store) Load(slot string) (modules []habitat.Module, found bool, err error) {
	data, err := os.ReadFile(s.slotPath(slot))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	modules, err = decodeDocument(slot, data)
	if err != nil {
		return nil, false, err
	}
	return modules, true, nil
}

// Export writes the layout document to an arbitrary path, for download.
func Export(path string, modules []habitat.Module) error {
	return writeDocument(path, modules)
}

// Import reads and decodes a layout document from an arbitrary path.
// Decode failures come back as *DecodeError so the UI can warn and keep
// the current registry.
func Import(path string) ([]habitat.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeDocument(path, data)
}

func writeDocument(path string, modules []habitat.Module) error {
	if modules == nil {
		modules = []habitat.Module{} // encode an empty registry as [], not null
	}
	data, err := json.MarshalIndent(modules, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func decodeDocument(source string, data []byte) ([]habitat.Module, error) {
	var modules []habitat.Module
	if err := json.Unmarshal(data, &modules); err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}
	return modules, nil
}
