package pdf

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStore writes rendered artifacts to a local directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the artifact for a contract and returns its path.
func (s *FileStore) Save(contractID string, data []byte) (string, error) {
	path := filepath.Join(s.dir, contractID+".pdf")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}
