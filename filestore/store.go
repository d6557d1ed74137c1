package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ephraimraxy/docflow/upload"
)

// Store keeps version files on disk under one folder per document, with
// a nanosecond timestamp prefix so names never collide.
type Store struct {
	UploadDir string
}

func New(uploadDir string) *Store {
	return &Store{UploadDir: uploadDir}
}

func (s *Store) docDir(docID string) string {
	return filepath.Join(s.UploadDir, filepath.Base(docID))
}

func (s *Store) Save(docID, filename string, src io.Reader) (*upload.SavedFile, error) {

	filename, err := upload.CleanFilename(filename)
	if err != nil {
		return nil, err
	}

	var dir = s.docDir(docID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var name = strconv.FormatInt(time.Now().UnixNano(), 10) + "_" + filename
	var fsPath = filepath.Join(dir, name)

	dst, err := os.OpenFile(fsPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}

	var hash = sha256.New()
	size, err := io.Copy(dst, io.TeeReader(src, hash))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(fsPath)
		return nil, err
	}

	return &upload.SavedFile{
		Path:   filepath.ToSlash(filepath.Join(filepath.Base(docID), name)),
		Size:   size,
		SHA256: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

func (s *Store) fsPath(path string) (string, error) {
	path = filepath.FromSlash(path)
	if path == "" || strings.Contains(path, "..") || filepath.IsAbs(path) {
		return "", fmt.Errorf("invalid storage path %q", path)
	}
	return filepath.Join(s.UploadDir, path), nil
}

func (s *Store) Open(path string) (io.ReadCloser, error) {
	fsPath, err := s.fsPath(path)
	if err != nil {
		return nil, err
	}
	return os.Open(fsPath)
}

func (s *Store) Delete(path string) error {

	fsPath, err := s.fsPath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fsPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	_ = os.Remove(filepath.Dir(fsPath)) // works only if the folder is empty now
	return nil
}
