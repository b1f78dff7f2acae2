// AngelaMos | 2026
// storage_test.go

package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deeazer/company-crm/internal/config"
)

func TestLocalStorage_PutOpenDelete(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s := NewLocalStorage(fsys)
	ctx := context.Background()
	key := "documents/p1/abc.pdf"

	require.NoError(t, s.Put(ctx, key, strings.NewReader("%PDF-1.4 body"), 13, "application/pdf"))

	obj, err := s.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())
	assert.Equal(t, "%PDF-1.4 body", string(data))
	assert.Equal(t, int64(13), obj.Size)

	entries, err := afero.ReadDir(fsys, "documents/p1")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))

	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s := NewLocalStorage(afero.NewMemMapFs())
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../secret", "a/../../b", "a\\b", "a//b"} {
		err := s.Put(ctx, key, strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestLocalStorage_Ping(t *testing.T) {
	s := NewLocalStorage(afero.NewMemMapFs())
	assert.NoError(t, s.Ping(context.Background()))
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}

func TestNew_LocalDriver(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{
		Driver:    "local",
		LocalPath: t.TempDir(),
	})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)
}
