package keyrepo

import (
	"errors"
	"fmt"
	"io/fs"
	"jsonstore/internal/repositories/storage"
	"os"
	"path/filepath"
)

const pkg = "keyRepo/"

type repository struct {
	path string
}

func NewRepository(path string) *repository {
	return &repository{path: path}
}

func (r *repository) Load() ([]byte, error) {
	op := pkg + "Load"

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrKeyNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

// Save writes the key readable by the owner only. An existing key is never
// overwritten.
func (r *repository) Save(pemData []byte) error {
	op := pkg + "Save"

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := f.Write(pemData); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	return f.Close()
}
