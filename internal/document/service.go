// AngelaMos | 2026
// service.go

package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/middleware"
	"github.com/Deeazer/company-crm/internal/storage"
	"github.com/Deeazer/company-crm/internal/user"
)

var (
	ErrFileRequired    = errors.New("file is required")
	ErrFileTooLarge    = errors.New("file exceeds the upload limit")
	ErrProjectNotFound = errors.New("project not found")
)

const maxNameLength = 100

type ProjectChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// UploadInput is one file part plus its form fields. File must be
// seekable so the content can be sniffed before it is stored.
type UploadInput struct {
	File         io.ReadSeeker
	Filename     string
	Size         int64
	DeclaredType string
	Fields       UploadRequest
	UploaderID   string
}

type Service struct {
	repo     Repository
	store    storage.Storage
	projects ProjectChecker
	maxSize  int64
}

func NewService(
	repo Repository,
	store storage.Storage,
	projects ProjectChecker,
	maxSize int64,
) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		projects: projects,
		maxSize:  maxSize,
	}
}

func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// Upload stores the blob first and the metadata row second. A failed insert
// removes the blob again so no row ever points at a missing object.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Document, error) {
	if in.File == nil || in.Size == 0 {
		return nil, ErrFileRequired
	}
	if in.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	exists, err := s.projects.Exists(ctx, in.Fields.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("check project: %w", err)
	}
	if !exists {
		return nil, ErrProjectNotFound
	}

	fileType, ext, err := sniffType(in.File, in.DeclaredType)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		ID:          uuid.New().String(),
		Name:        in.Fields.Name,
		Description: in.Fields.Description,
		FileType:    fileType,
		FileSize:    in.Size,
		Category:    in.Fields.Category,
		Version:     in.Fields.Version,
		UploadedBy:  in.UploaderID,
		ProjectID:   in.Fields.ProjectID,
	}
	if doc.Name == "" {
		doc.Name = defaultName(in.Filename)
	}
	if doc.Category == "" {
		doc.Category = CategoryOther
	}
	if doc.Version == "" {
		doc.Version = DefaultVersion
	}
	doc.StorageKey = path.Join("documents", doc.ProjectID, uuid.New().String()+ext)

	ctx, span := core.StartSpan(ctx, "document.upload")
	defer span.End()

	if err := s.store.Put(ctx, doc.StorageKey, in.File, in.Size, fileType); err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("store document: %w", err)
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		core.SetSpanError(ctx, err)
		if delErr := s.store.Delete(ctx, doc.StorageKey); delErr != nil {
			slog.ErrorContext(ctx, "orphaned document blob",
				"key", doc.StorageKey,
				"error", delErr,
			)
		}
		if errors.Is(err, core.ErrForeignKey) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	slog.InfoContext(ctx, "document uploaded",
		"document_id", doc.ID,
		"project_id", doc.ProjectID,
		"size", doc.FileSize,
		"type", doc.FileType,
	)

	return doc, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("get document: %w", core.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]Document, int, error) {
	return s.repo.List(ctx, params)
}

// Open returns the metadata and an open blob; the caller closes Body.
func (s *Service) Open(
	ctx context.Context,
	id string,
) (*Document, *storage.Object, error) {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	obj, err := s.store.Open(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open document %s: %w", doc.ID, err)
	}

	return doc, obj, nil
}

// Delete is allowed for the uploader, managers and admins. The row goes
// first; a blob that fails to delete afterwards is only logged.
func (s *Service) Delete(
	ctx context.Context,
	identity *middleware.Identity,
	id string,
) error {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !canDelete(identity, doc) {
		return core.ErrForbidden
	}

	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		slog.WarnContext(ctx, "document blob not deleted",
			"document_id", doc.ID,
			"key", doc.StorageKey,
			"error", err,
		)
	}

	return nil
}

func canDelete(identity *middleware.Identity, doc *Document) bool {
	if identity == nil {
		return false
	}
	switch identity.Role {
	case user.RoleAdmin, user.RoleManager:
		return true
	}
	return identity.UserID == doc.UploadedBy
}

func defaultName(filename string) string {
	name := strings.TrimSpace(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		name = "document"
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name
}
