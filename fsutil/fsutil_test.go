package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFile_CreatesParentDirsAndContent(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(dir, "src/nested/a.ts", "export const x = 1;"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "src/nested/a.ts"))
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != "export const x = 1;" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestWriteFile_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(dir, "a.ts", "v1"); err != nil {
		t.Fatalf("WriteFile v1: %v", err)
	}
	if err := WriteFile(dir, "a.ts", "v2"); err != nil {
		t.Fatalf("WriteFile v2: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.ts"))
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("expected overwrite, got %q", data)
	}
}

func TestCreateFile_FailsIfExists(t *testing.T) {
	dir := t.TempDir()
	if err := CreateFile(dir, "a.ts", "v1"); err != nil {
		t.Fatalf("CreateFile v1: %v", err)
	}
	if err := CreateFile(dir, "a.ts", "v2"); err == nil {
		t.Fatal("expected CreateFile to fail when the file already exists")
	}
}

func TestValidatePath_RejectsEscapingParentDir(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(dir, "../escape.ts", "x"); err == nil {
		t.Fatal("expected a parent-directory-escaping path to be rejected")
	}
}

func TestValidatePath_RejectsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(dir, "/etc/passwd", "x"); err == nil {
		t.Fatal("expected an absolute path to be rejected")
	}
}

func TestValidatePath_RejectsEmptyPath(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(dir, "", "x"); err == nil {
		t.Fatal("expected an empty path to be rejected")
	}
}

func TestValidatePath_RejectsNULByte(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(dir, "a\x00.ts", "x"); err == nil {
		t.Fatal("expected a path containing a NUL byte to be rejected")
	}
}

func TestDeleteFile_MovesToTrashRatherThanRemoving(t *testing.T) {
	restore := stubNow(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	defer restore()

	dir := t.TempDir()
	if err := WriteFile(dir, "src/a.ts", "keep me"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	trashPath, err := DeleteFile(dir, "src/a.ts")
	if err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "src/a.ts")); !os.IsNotExist(err) {
		t.Error("expected the original file to no longer exist at its original path")
	}
	data, err := os.ReadFile(trashPath)
	if err != nil {
		t.Fatalf("expected the trashed file to exist at %q: %v", trashPath, err)
	}
	if string(data) != "keep me" {
		t.Errorf("expected trashed content preserved, got %q", data)
	}
	if filepath.Dir(trashPath) != filepath.Join(dir, TrashDir) {
		t.Errorf("expected trash path under %q, got %q", TrashDir, trashPath)
	}
	wantName := "20260102_030405_000_src_a.ts"
	if got := filepath.Base(trashPath); got != wantName {
		t.Errorf("expected deterministic trash filename %q, got %q", wantName, got)
	}
}

func TestDeleteFile_RepeatedDeletesDoNotCollide(t *testing.T) {
	calls := []time.Time{
		time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
	}
	i := 0
	orig := now
	now = func() time.Time {
		t := calls[i]
		i++
		return t
	}
	defer func() { now = orig }()

	dir := t.TempDir()
	if err := WriteFile(dir, "a.ts", "v1"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	first, err := DeleteFile(dir, "a.ts")
	if err != nil {
		t.Fatalf("first DeleteFile: %v", err)
	}

	if err := WriteFile(dir, "a.ts", "v2"); err != nil {
		t.Fatalf("WriteFile v2: %v", err)
	}
	second, err := DeleteFile(dir, "a.ts")
	if err != nil {
		t.Fatalf("second DeleteFile: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct trash paths for repeated deletes of the same original path, got %q twice", first)
	}
}

// stubNow overrides the package's now var for the duration of a test,
// returning a restore func.
func stubNow(t time.Time) func() {
	orig := now
	now = func() time.Time { return t }
	return func() { now = orig }
}

func TestDeleteFile_MissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := DeleteFile(dir, "missing.ts"); err == nil {
		t.Fatal("expected an error deleting a file that does not exist")
	}
}

func TestDeletePermanent_RemovesOutright(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(dir, "a.ts", "gone"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := DeletePermanent(dir, "a.ts"); err != nil {
		t.Fatalf("DeletePermanent: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.ts")); !os.IsNotExist(err) {
		t.Error("expected the file to be gone")
	}
}
