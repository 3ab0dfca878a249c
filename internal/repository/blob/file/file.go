package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"storefront/internal/repository/blob"
)

const ext = ".json"

// BlobRepository keeps one file per (namespace, key) under dir/namespace/.
type BlobRepository struct {
	mu    sync.RWMutex
	dir   string
	quota int64
}

func NewBlobRepository(dir string, quota int64) (*BlobRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &BlobRepository{dir: dir, quota: quota}, nil
}

func (r *BlobRepository) path(namespace, key string) string {
	return filepath.Join(r.dir, namespace, key+ext)
}

func (r *BlobRepository) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := blob.ValidateKey(namespace, key); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path(namespace, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, blob.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", blob.ErrStorageError, err)
	}
	return data, nil
}

func (r *BlobRepository) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := blob.ValidateKey(namespace, key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	used, err := r.usage(namespace, key)
	if err != nil {
		return err
	}
	if err := blob.CheckQuota(r.quota, used, int64(len(value))); err != nil {
		return err
	}

	dir := filepath.Join(r.dir, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", blob.ErrStorageError, err)
	}
	if err := atomicWrite(r.path(namespace, key), value); err != nil {
		return fmt.Errorf("%w: %v", blob.ErrStorageError, err)
	}
	return nil
}

func (r *BlobRepository) Delete(ctx context.Context, namespace, key string) error {
	if err := blob.ValidateKey(namespace, key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path(namespace, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", blob.ErrStorageError, err)
	}
	return nil
}

// usage sums the sizes of every value in namespace except key.
func (r *BlobRepository) usage(namespace, key string) (int64, error) {
	entries, err := os.ReadDir(filepath.Join(r.dir, namespace))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", blob.ErrStorageError, err)
	}

	var total int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) || name == key+ext {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// atomicWrite writes data via a temp file + rename.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".blob-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
