package upload

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// SavedFile describes a stored blob. The path is opaque to the core; it
// is recorded against the version row and handed back to Open later.
type SavedFile struct {
	Path   string
	Size   int64
	SHA256 string
}

// Store accepts version files and hands them back by path.
type Store interface {
	Save(docID, filename string, src io.Reader) (*SavedFile, error)
	Open(path string) (io.ReadCloser, error)
	Delete(path string) error
}

// CleanFilename reduces a client-supplied filename to a safe base name.
func CleanFilename(filename string) (string, error) {
	filename = filepath.Base(filename)
	filename = strings.TrimSpace(filename)
	if strings.Contains(filename, "/") || strings.Contains(filename, `\`) {
		return "", errors.New("filename contains a slash")
	}
	if filename == "" || filename == "." || filename == ".." {
		return "", errors.New("filename is empty")
	}
	return filename, nil
}
