// Package fsutil writes, creates, and soft-deletes the files a
// needlepoint project generates, confined to the project directory.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TrashDir is the directory, relative to a project root, that DeleteFile
// moves files into instead of removing them.
const TrashDir = ".needlepoint/trash"

// validatePath rejects a relative path that is empty, absolute, contains
// a NUL byte, or escapes projectPath via a ".." component once cleaned.
// It strips a leading Windows "\\?\" extended-path prefix before
// validating, since filepath.Join is a no-op for that prefix on every
// other platform and a relPath carrying it would otherwise fail the
// absolute-path check.
func validatePath(projectPath, relPath string) (string, error) {
	relPath = strings.TrimPrefix(relPath, `\\?\`)

	if relPath == "" {
		return "", fmt.Errorf("fsutil: path must not be empty")
	}
	if strings.ContainsRune(relPath, 0) {
		return "", fmt.Errorf("fsutil: path must not contain a NUL byte")
	}
	if filepath.IsAbs(relPath) {
		return "", fmt.Errorf("fsutil: path must be relative: %q", relPath)
	}

	cleaned := filepath.Clean(relPath)
	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return "", fmt.Errorf("fsutil: path escapes project directory: %q", relPath)
		}
	}

	return filepath.Join(projectPath, cleaned), nil
}

// WriteFile writes content to relPath under projectPath, creating parent
// directories as needed. It overwrites an existing file.
func WriteFile(projectPath, relPath, content string) error {
	full, err := validatePath(projectPath, relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("fsutil: creating directories for %q: %w", relPath, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("fsutil: writing %q: %w", relPath, err)
	}
	return nil
}

// CreateFile writes content to relPath, failing if the file already
// exists.
func CreateFile(projectPath, relPath, content string) error {
	full, err := validatePath(projectPath, relPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); err == nil {
		return fmt.Errorf("fsutil: %q already exists", relPath)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("fsutil: creating directories for %q: %w", relPath, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("fsutil: writing %q: %w", relPath, err)
	}
	return nil
}

// DeleteFile moves relPath into projectPath's trash directory rather
// than removing it, returning the path it was moved to.
func DeleteFile(projectPath, relPath string) (string, error) {
	full, err := validatePath(projectPath, relPath)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("fsutil: %q does not exist", relPath)
	}

	trashDir := filepath.Join(projectPath, TrashDir)
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return "", fmt.Errorf("fsutil: creating trash directory: %w", err)
	}

	trashPath := filepath.Join(trashDir, trashFilename(relPath))
	if err := os.Rename(full, trashPath); err != nil {
		return "", fmt.Errorf("fsutil: moving %q to trash: %w", relPath, err)
	}
	return trashPath, nil
}

// DeletePermanent removes relPath outright, bypassing the trash.
func DeletePermanent(projectPath, relPath string) error {
	full, err := validatePath(projectPath, relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("fsutil: removing %q: %w", relPath, err)
	}
	return nil
}

// now is overridable in tests; production code always uses time.Now.
var now = time.Now

// trashFilename flattens relPath into a single filename prefixed with a
// sortable UTC timestamp with millisecond precision, so repeated deletes
// of the same path made in different milliseconds never collide in the
// trash directory.
func trashFilename(relPath string) string {
	flattened := strings.ReplaceAll(filepath.ToSlash(relPath), "/", "_")
	t := now().UTC()
	return fmt.Sprintf("%s_%03d_%s", t.Format("20060102_150405"), t.Nanosecond()/int(time.Millisecond), flattened)
}
