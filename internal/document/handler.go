// AngelaMos | 2026
// handler.go

package document

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Deeazer/company-crm/internal/core"
	"github.com/Deeazer/company-crm/internal/middleware"
	"github.com/Deeazer/company-crm/internal/storage"
)

const (
	formOverhead    = 1 << 20
	multipartMemory = 1 << 20
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) (*Handler, error) {
	v := core.NewValidator()
	if err := RegisterValidators(v); err != nil {
		return nil, fmt.Errorf("register document validators: %w", err)
	}

	return &Handler{
		service:   service,
		validator: v,
	}, nil
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/documents", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Upload)
		r.Get("/{documentID}", h.Get)
		r.Get("/{documentID}/download", h.Download)
		r.Delete("/{documentID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:      parseIntQuery(r, "page", 1),
		PageSize:  parseIntQuery(r, "pageSize", 20),
		ProjectID: r.URL.Query().Get("projectId"),
	}
	params.Normalize()

	if err := h.validator.Var(params.ProjectID, "omitempty,uuid"); err != nil {
		core.BadRequest(w, "projectId must be a valid UUID")
		return
	}

	docs, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(docs), params.Page, params.PageSize, total)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxSize()+formOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, ErrFileTooLarge)
			return
		}
		core.BadRequest(w, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	fields := UploadRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		ProjectID:   r.FormValue("projectId"),
		Category:    r.FormValue("category"),
		Version:     r.FormValue("version"),
	}
	if err := h.validator.Struct(fields); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, ErrFileRequired)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	doc, err := h.service.Upload(r.Context(), UploadInput{
		File:         file,
		Filename:     header.Filename,
		Size:         header.Size,
		DeclaredType: header.Header.Get("Content-Type"),
		Fields:       fields,
		UploaderID:   middleware.GetUserID(r.Context()),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToResponse(doc))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetByID(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToResponse(doc))
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	doc, obj, err := h.service.Open(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer func() {
		_ = obj.Body.Close()
	}()

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": downloadName(doc),
	})
	if disposition == "" {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", doc.FileType)
	w.Header().Set("Content-Disposition", disposition)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		slog.WarnContext(r.Context(), "document download interrupted",
			"document_id", doc.ID,
			"error", err,
		)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	if err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "documentID")); err != nil {
		h.writeError(w, err)
		return
	}

	core.Message(w, http.StatusOK, "document deleted")
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, storage.ErrObjectNotFound):
		core.NotFound(w, "document")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "only the uploader, a manager or an admin can delete")
	case errors.Is(err, ErrFileRequired):
		core.JSONError(w, core.ValidationError("file is required"))
	case errors.Is(err, ErrFileTooLarge):
		core.JSONError(w, core.NewAppError(
			err,
			fmt.Sprintf("file must be at most %d bytes", h.service.MaxSize()),
			http.StatusRequestEntityTooLarge,
			"FILE_TOO_LARGE",
		))
	case errors.Is(err, ErrUnsupportedType):
		core.JSONError(w, core.NewAppError(
			err,
			"only pdf, doc, docx, xls, xlsx and txt files are accepted",
			http.StatusUnsupportedMediaType,
			"UNSUPPORTED_TYPE",
		))
	case errors.Is(err, ErrProjectNotFound):
		core.BadRequest(w, "projectId does not reference a project")
	default:
		core.InternalServerError(w, err)
	}
}

func downloadName(doc *Document) string {
	ext := allowedTypes[doc.FileType]
	if ext == "" || path.Ext(doc.Name) == ext {
		return doc.Name
	}
	return doc.Name + ext
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
