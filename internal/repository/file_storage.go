package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
)

type fileStorage struct {
	path string
}

// NewFileStorage stores the record as <dir>/<key>.json.
func NewFileStorage(dir, key string) (port.CartStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is empty")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	return &fileStorage{path: filepath.Join(dir, key+".json")}, nil
}

func (f *fileStorage) Load(_ context.Context) ([]domain.CartLineItem, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	return DecodeItems(data)
}

// Save writes to a temp file and renames it over the record.
func (f *fileStorage) Save(_ context.Context, items []domain.CartLineItem) error {
	data, err := EncodeItems(items)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		return errors.Join(fmt.Errorf("tmp.Write: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("tmp.Close: %w", err), os.Remove(tmp.Name()))
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Join(fmt.Errorf("os.Rename: %w", err), os.Remove(tmp.Name()))
	}

	return nil
}

func (f *fileStorage) Delete(_ context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove: %w", err)
	}

	return nil
}
