package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type WriteResult struct {
	Written string `json:"written"`
	Bytes   int    `json:"bytes"`
}

// WriteFile writes md to path, creating parent directories.
func WriteFile(path, md string, overwrite bool) (WriteResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return WriteResult{}, errors.New("missing --out")
	}
	path = filepath.Clean(path)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return WriteResult{}, errors.New("file exists (use --overwrite): " + path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return WriteResult{}, err
	}
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: path, Bytes: len(md)}, nil
}
