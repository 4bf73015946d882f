package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// document is one JSON file cached in memory and rewritten whole on every change
type document[T any] struct {
	mu     sync.Mutex
	path   string
	init   func() *T
	data   *T
	loaded bool
}

func newDocument[T any](dir, name string, init func() *T) *document[T] {
	return &document[T]{path: filepath.Join(dir, name), init: init}
}

// loadLocked reads the file once. Missing or corrupt files yield the initial value.
func (d *document[T]) loadLocked() *T {
	if d.loaded {
		return d.data
	}
	d.loaded = true
	d.data = d.init()

	raw, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return d.data
	}
	if err != nil {
		log.WithError(err).WithField("path", d.path).Warn("Failed to read data file, using defaults")
		return d.data
	}

	decoded := d.init()
	if err := json.Unmarshal(raw, decoded); err != nil {
		log.WithError(err).WithField("path", d.path).Warn("Corrupt data file, using defaults")
		return d.data
	}
	d.data = decoded
	return d.data
}

// read runs fn against the cached document
func (d *document[T]) read(fn func(data *T)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.loadLocked())
}

// write runs fn against the cached document and persists the result
func (d *document[T]) write(fn func(data *T)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	data := d.loadLocked()
	fn(data)
	return writeAtomic(d.path, data)
}

// writeAtomic writes v as indented JSON via a temp file and rename
func writeAtomic(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// timestamp decodes RFC 3339 as well as naive ISO-8601 timestamps, which are read as UTC
type timestamp time.Time

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t timestamp) ptr() *time.Time {
	v := time.Time(t)
	return &v
}
