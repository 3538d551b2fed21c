package gbfs

import (
	"os"
	"path/filepath"
)

// WriteSnapshot stores payload as <dir>/<prefix>.json, replacing any
// previous snapshot with the same prefix.
func WriteSnapshot(dir, prefix string, payload []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, prefix+".json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadSnapshot loads a stored payload.
func ReadSnapshot(path string) ([]byte, error) {
	return os.ReadFile(path)
}
