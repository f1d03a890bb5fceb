package cryptox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

// LoadOrGeneratePepper reads the pepper stored at path, creating the file
// with a fresh random pepper the first time. Losing this file invalidates
// every Argon2id hash keyed with it.
func LoadOrGeneratePepper(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("cryptox: pepper path is empty")
	}

	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("cryptox: create pepper dir: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		pepper := strings.TrimSpace(string(data))
		if pepper == "" {
			return nil, fmt.Errorf("cryptox: pepper file %s is empty", path)
		}
		return []byte(pepper), nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("cryptox: read pepper: %w", err)
	}

	pepper, err := GenerateToken(TokenSize256)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, []byte(pepper), 0o600); err != nil {
		return nil, fmt.Errorf("cryptox: write pepper: %w", err)
	}

	return []byte(pepper), nil
}
