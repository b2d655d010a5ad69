package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"taskline/internal/model"
)

// JSONFile stores tasks in a single flat JSON file (see wire.go).
type JSONFile struct {
	Path string
}

func (f JSONFile) Load(ctx context.Context) ([]model.Task, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoData
		}
		return nil, err
	}
	if strings.TrimSpace(string(b)) == "" {
		return nil, ErrNoData
	}
	if err := validateWire(b); err != nil {
		return nil, err
	}
	return decodeWire(b)
}

// Save overwrites the whole file; it never appends.
func (f JSONFile) Save(ctx context.Context, tasks []model.Task) error {
	path := filepath.Clean(strings.TrimSpace(f.Path))
	if path == "" || path == "." {
		return errors.New("json store: missing path")
	}
	b, err := encodeWire(tasks)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := atomicWriteFile(dir, filepath.Base(path)+".*.tmp", path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (f JSONFile) Fingerprint() string { return fileStamp(f.Path) }

func (f JSONFile) Describe() string { return "json:" + f.Path }

// Memory is the non-persisted variant: it never has data and discards saves.
type Memory struct{}

func (Memory) Load(ctx context.Context) ([]model.Task, error) { return nil, ErrNoData }

func (Memory) Save(ctx context.Context, tasks []model.Task) error { return nil }

func (Memory) Fingerprint() string { return "" }

func (Memory) Describe() string { return "memory" }
