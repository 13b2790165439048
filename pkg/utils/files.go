package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MakeDir creates a directory with all parent directories
func MakeDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// DeleteFile removes a file. A missing file is not an error.
func DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MoveFile moves or renames a file
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move file from %s to %s: %w", src, dst, err)
	}
	return nil
}

// TempPath returns a unique file path in dir. ext includes the leading dot.
func TempPath(dir, prefix, ext string) string {
	return filepath.Join(dir, prefix+"_"+uuid.NewString()+ext)
}

// SaveTemp copies r into a new uniquely named file in dir and returns its
// path. The caller removes the file.
func SaveTemp(dir, prefix, ext string, r io.Reader) (string, error) {
	if err := MakeDir(dir); err != nil {
		return "", err
	}
	path := TempPath(dir, prefix, ext)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
