// AngelaMos | 2026
// service_test.go

package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/middleware"
	"github.com/Deeazer/company-crm/internal/storage"
	"github.com/Deeazer/company-crm/internal/user"
)

const (
	testProjectID = "3f1c2b9e-5a7d-4c1e-9f00-2b6d8e4a1c77"
	testMaxSize   = 1 << 10
)

var pdfBody = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")

type memoryRepo struct {
	mu        sync.Mutex
	docs      map[string]Document
	createErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[string]Document)}
}

func (m *memoryRepo) Create(_ context.Context, d *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.docs[d.ID] = *d
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &d, nil
}

func (m *memoryRepo) List(_ context.Context, params ListParams) ([]Document, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Document
	for _, d := range m.docs {
		if params.ProjectID == "" || d.ProjectID == params.ProjectID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

type projectSet map[string]bool

func (p projectSet) Exists(_ context.Context, id string) (bool, error) {
	return p[id], nil
}

type testEnv struct {
	svc   *Service
	repo  *memoryRepo
	fs    afero.Fs
	store storage.Storage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fsys := afero.NewMemMapFs()
	store := storage.NewLocalStorage(fsys)
	repo := newMemoryRepo()
	return &testEnv{
		svc:   NewService(repo, store, projectSet{testProjectID: true}, testMaxSize),
		repo:  repo,
		fs:    fsys,
		store: store,
	}
}

func (e *testEnv) blobCount(t *testing.T) int {
	t.Helper()
	entries, err := afero.ReadDir(e.fs, "documents/"+testProjectID)
	if err != nil {
		return 0
	}
	return len(entries)
}

func uploadInput(body []byte, filename string) UploadInput {
	return UploadInput{
		File:       bytes.NewReader(body),
		Filename:   filename,
		Size:       int64(len(body)),
		Fields:     UploadRequest{ProjectID: testProjectID},
		UploaderID: "uploader",
	}
}

func TestService_UploadAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)

	doc, err := env.svc.Upload(context.Background(), uploadInput(pdfBody, "Contract.pdf"))
	require.NoError(t, err)

	assert.Equal(t, "Contract.pdf", doc.Name)
	assert.Equal(t, CategoryOther, doc.Category)
	assert.Equal(t, DefaultVersion, doc.Version)
	assert.Equal(t, "application/pdf", doc.FileType)
	assert.Regexp(t, `^documents/`+testProjectID+`/[0-9a-f-]{36}\.pdf$`, doc.StorageKey)

	doc, obj, err := env.svc.Open(context.Background(), doc.ID)
	require.NoError(t, err)
	defer obj.Body.Close()
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, pdfBody, data)
	assert.Equal(t, int64(len(pdfBody)), doc.FileSize)
}

func TestService_UploadPlainText(t *testing.T) {
	env := newTestEnv(t)

	doc, err := env.svc.Upload(context.Background(), uploadInput([]byte("meeting notes\n"), "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", doc.FileType)
}

func TestService_UploadRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Upload(ctx, uploadInput(nil, "empty.pdf"))
	assert.ErrorIs(t, err, ErrFileRequired)

	_, err = env.svc.Upload(ctx, uploadInput(bytes.Repeat([]byte("a"), testMaxSize+1), "big.txt"))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	_, err = env.svc.Upload(ctx, uploadInput(png, "fake.pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	in := uploadInput(pdfBody, "a.pdf")
	in.Fields.ProjectID = "00000000-0000-0000-0000-000000000000"
	_, err = env.svc.Upload(ctx, in)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	assert.Zero(t, env.blobCount(t))
}

func TestService_UploadRemovesBlobWhenInsertFails(t *testing.T) {
	env := newTestEnv(t)
	env.repo.createErr = errors.New("connection reset")

	_, err := env.svc.Upload(context.Background(), uploadInput(pdfBody, "a.pdf"))
	require.Error(t, err)
	assert.Zero(t, env.blobCount(t))
}

func TestService_DeletePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc, err := env.svc.Upload(ctx, uploadInput(pdfBody, "a.pdf"))
	require.NoError(t, err)

	stranger := &middleware.Identity{UserID: "someone", Role: user.RoleUser}
	assert.ErrorIs(t, env.svc.Delete(ctx, stranger, doc.ID), core.ErrForbidden)
	assert.ErrorIs(t, env.svc.Delete(ctx, nil, doc.ID), core.ErrForbidden)

	owner := &middleware.Identity{UserID: "uploader", Role: user.RoleUser}
	require.NoError(t, env.svc.Delete(ctx, owner, doc.ID))
	assert.Zero(t, env.blobCount(t))

	_, err = env.svc.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	doc, err = env.svc.Upload(ctx, uploadInput(pdfBody, "b.pdf"))
	require.NoError(t, err)
	manager := &middleware.Identity{UserID: "m", Role: user.RoleManager}
	assert.NoError(t, env.svc.Delete(ctx, manager, doc.ID))
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "report.pdf", defaultName(`C:\Users\bob\report.pdf`))
	assert.Equal(t, "document", defaultName(""))
	assert.Len(t, []rune(defaultName(string(bytes.Repeat([]byte("я"), 150)))), maxNameLength)
}
