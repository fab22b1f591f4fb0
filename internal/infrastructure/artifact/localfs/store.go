package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"docclassifier/internal/core/domain"
)

// Store keeps the single classifier artifact at a fixed well-known path.
// Save writes to a temp file and renames it, so readers see either the old
// artifact or the new one, never a partial write.
type Store struct {
	path string
}

func New(path string) (*Store, error) {
	if path == "" {
		path = "./data/models/document-classifier.bin"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".model-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

func (s *Store) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.WrapError(domain.ErrArtifactNotFound, "load artifact", err)
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

func (s *Store) Exists(_ context.Context) bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Fingerprint identifies the current artifact revision. The rename in Save
// updates the mtime, so a new publish always yields a new fingerprint.
func (s *Store) Fingerprint(_ context.Context) (string, bool) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()), true
}
