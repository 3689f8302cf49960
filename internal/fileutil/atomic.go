// Package fileutil writes config and log artefacts without leaving partial files behind.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrExists is returned by CreateFileAtomic when the target already exists.
var ErrExists = errors.New("file already exists")

// WriteFileAtomic replaces filename with data. The bytes go to a sibling
// temp file first, which is synced and renamed over the target, so readers
// see either the old contents or the new ones.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmpPath, err := writeTemp(filename, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// CreateFileAtomic is WriteFileAtomic that refuses to replace an existing
// file. The temp file is hard-linked into place, which fails if the target
// appeared at any point before the link.
func CreateFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmpPath, err := writeTemp(filename, data, perm)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	if err := os.Link(tmpPath, filename); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", filename, ErrExists)
		}
		return fmt.Errorf("failed to link temp file: %w", err)
	}
	return nil
}

// writeTemp writes data to a synced temp file next to filename and returns
// its path. The caller owns the file.
func writeTemp(filename string, data []byte, perm os.FileMode) (string, error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	fail := func(format string, err error) (string, error) {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf(format, err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fail("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	return tmpPath, nil
}
