// Package storage persists uploaded file bytes and resolves stored file
// references into fetchable URLs for both public and access-controlled files.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Store interface {
	Save(filename string, data []byte, private bool) (string, error)
	ResolveURL(ref string) string
}

// LocalStore keeps files on the local disk under dir, split into public
// (files/) and private (private/files/) trees.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore() *LocalStore {
	return &LocalStore{
		Dir:     getEnv("FILE_STORAGE_DIR", "./data"),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
	}
}

// Save writes the bytes and returns the stored reference ("/files/<name>" or
// "/private/files/<name>").
func (s *LocalStore) Save(filename string, data []byte, private bool) (string, error) {
	filename = filepath.Base(filename)
	if filename == "" || filename == "." {
		return "", fmt.Errorf("invalid file name")
	}

	sub := "files"
	ref := "/files/" + filename
	if private {
		sub = filepath.Join("private", "files")
		ref = "/private/files/" + filename
	}

	dir := filepath.Join(s.Dir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", err
	}
	return ref, nil
}

// ResolveURL turns a stored reference into a fetchable URL. Absolute URLs
// pass through; private references resolve to the download endpoint.
func (s *LocalStore) ResolveURL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	switch {
	case strings.HasPrefix(ref, "/private/"):
		return s.BaseURL + "/api/v1/files/download?file_url=" + ref
	case strings.HasPrefix(ref, "private/"):
		return s.BaseURL + "/api/v1/files/download?file_url=/" + ref
	case strings.HasPrefix(ref, "/files/"):
		return s.BaseURL + ref
	case strings.HasPrefix(ref, "files/"):
		return s.BaseURL + "/" + ref
	default:
		return s.BaseURL + "/files/" + ref
	}
}

// Open returns the on-disk path for a stored reference, or an error when the
// reference escapes the storage tree.
func (s *LocalStore) Open(ref string) (string, error) {
	cleaned := filepath.Clean("/" + strings.TrimPrefix(ref, "/"))
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid file reference")
	}
	return filepath.Join(s.Dir, cleaned), nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
