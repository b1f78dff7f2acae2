// AngelaMos | 2026
// local.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

type LocalStorage struct {
	fs afero.Fs
}

// NewLocalStorage stores objects under the root of fsys.
func NewLocalStorage(fsys afero.Fs) *LocalStorage {
	return &LocalStorage{fs: fsys}
}

func NewLocalStorageAt(root string) (*LocalStorage, error) {
	if root == "" {
		root = "uploads"
	}

	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return NewLocalStorage(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// Put writes to a temporary sibling and renames it into place so readers
// never observe a partial file.
func (s *LocalStorage) Put(
	_ context.Context,
	key string,
	body io.Reader,
	_ int64,
	_ string,
) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(path.Dir(key), 0o750); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp := key + ".tmp-" + uuid.NewString()
	f, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write object: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close object: %w", err)
	}

	if err := s.fs.Rename(tmp, key); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("commit object: %w", err)
	}

	return nil
}

func (s *LocalStorage) Open(_ context.Context, key string) (*Object, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}

	return &Object{Body: f, Size: info.Size()}, nil
}

// Delete is idempotent.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

func (s *LocalStorage) Ping(_ context.Context) error {
	if _, err := s.fs.Stat("."); err != nil {
		return fmt.Errorf("storage root: %w", err)
	}
	return nil
}
