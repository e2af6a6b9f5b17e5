package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteReadSize(t *testing.T) {
	fsys := New()
	path := filepath.Join(t.TempDir(), "list.txt")

	if err := fsys.WriteFile(path, []byte("file 'a.mp4'\n")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "file 'a.mp4'\n" {
		t.Errorf("unexpected content %q", data)
	}

	size, err := fsys.Size(path)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", size, len(data))
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fsys := New()
	path := filepath.Join(t.TempDir(), "work", "audio", "list.txt")

	if err := fsys.WriteFile(path, []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if ok, err := fsys.Exists(path); err != nil || !ok {
		t.Errorf("Exists = %v, %v; want true", ok, err)
	}
}

func TestFileSystem_Exists(t *testing.T) {
	fsys := New()
	dir := t.TempDir()

	if ok, err := fsys.Exists(dir); err != nil || !ok {
		t.Errorf("directory: Exists = %v, %v", ok, err)
	}
	if ok, err := fsys.Exists(filepath.Join(dir, "missing.mp4")); err != nil || ok {
		t.Errorf("missing file: Exists = %v, %v", ok, err)
	}
}

func TestFileSystem_SizeMissing(t *testing.T) {
	if _, err := New().Size(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileSystem_RemoveAndRemoveAll(t *testing.T) {
	fsys := New()
	dir := t.TempDir()

	file := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fsys.Remove(file); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ok, _ := fsys.Exists(file); ok {
		t.Error("expected file to be removed")
	}

	tree := filepath.Join(dir, "clips")
	if err := fsys.MkdirAll(filepath.Join(tree, "nested")); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tree, "nested", "a.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fsys.RemoveAll(tree); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if ok, _ := fsys.Exists(tree); ok {
		t.Error("expected tree to be removed")
	}
}
