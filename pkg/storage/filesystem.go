package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage persists sick-leave attachments on disk under a base directory.
// References handed back to callers are opaque paths relative to the base dir;
// the rest of the system never interprets file contents.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./sick_leaves"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Store writes the given bytes under a collision-free name derived from the
// suggested one and returns the relative reference.
func (s *LocalStorage) Store(data []byte, suggestedName string) (string, error) {
	name := sanitize(suggestedName)
	ref := uuid.NewString()
	if name != "" {
		ref = ref + "_" + name
	}
	path := filepath.Join(s.baseDir, ref)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return ref, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(ref string) (*os.File, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return file, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *LocalStorage) Delete(ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}

// Exists reports whether the reference resolves to a stored file.
func (s *LocalStorage) Exists(ref string) bool {
	path, err := s.resolve(ref)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *LocalStorage) resolve(ref string) (string, error) {
	cleaned := filepath.Clean(ref)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid attachment reference %q", ref)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

func sanitize(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
