package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/guardianbox/internal/common"
)

// FilesystemBackend stores blobs as files under a single root directory.
type FilesystemBackend struct {
	root string
}

// NewFilesystemBackend creates root if needed and returns a backend rooted
// there. The root is made absolute once so later key resolution cannot be
// affected by working-directory changes.
func NewFilesystemBackend(root string) (*FilesystemBackend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &FilesystemBackend{root: abs}, nil
}

// resolve canonicalizes key under the root and rejects anything that
// escapes it, e.g. keys containing "..". Checked before every access.
func (b *FilesystemBackend) resolve(key string) (string, error) {
	p := filepath.Clean(filepath.Join(b.root, filepath.FromSlash(key)))
	if p != b.root && !strings.HasPrefix(p, b.root+string(filepath.Separator)) {
		return "", common.ErrInvalidPath
	}
	if p == b.root {
		return "", common.ErrInvalidPath
	}
	return p, nil
}

func (b *FilesystemBackend) Put(ctx context.Context, key string, r io.Reader, size int64) (int64, error) {
	path, err := b.resolve(key)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o660)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return n, nil
}

func (b *FilesystemBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := b.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return f, nil
}

func (b *FilesystemBackend) Delete(ctx context.Context, key string) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}
