package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"
)

func TestSaveOpenDelete(t *testing.T) {

	var store = New(t.TempDir())
	var content = "some file content"

	saved, err := store.Save("doc1", "report.pdf", strings.NewReader(content))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Size != int64(len(content)) {
		t.Fatalf("size = %d, want %d", saved.Size, len(content))
	}

	var hash = sha256.Sum256([]byte(content))
	if saved.SHA256 != hex.EncodeToString(hash[:]) {
		t.Fatalf("sha256 = %s", saved.SHA256)
	}

	src, err := store.Open(saved.Path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != content {
		t.Fatalf("read back %q, want %q", got, content)
	}

	if err := store.Delete(saved.Path); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(saved.Path); err == nil {
		t.Fatal("open must fail after delete")
	}

	// deleting again is not an error
	if err := store.Delete(saved.Path); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSaveDistinctPaths(t *testing.T) {

	var store = New(t.TempDir())

	s1, err := store.Save("doc1", "a.txt", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	s2, err := store.Save("doc1", "a.txt", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if s1.Path == s2.Path {
		t.Fatalf("same path for two uploads: %s", s1.Path)
	}
}

func TestRejectsBadPaths(t *testing.T) {

	var store = New(t.TempDir())

	for _, path := range []string{"", "../etc/passwd", "/etc/passwd", "doc1/../../x"} {
		if _, err := store.Open(path); err == nil {
			t.Errorf("Open(%q) must fail", path)
		}
		if err := store.Delete(path); err == nil {
			t.Errorf("Delete(%q) must fail", path)
		}
	}

	// traversal in the filename is reduced to the base name
	saved, err := store.Save("doc1", "../evil.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.Contains(saved.Path, "..") {
		t.Errorf("saved path %q escapes the store", saved.Path)
	}
}
