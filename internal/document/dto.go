// AngelaMos | 2026
// dto.go

package document

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// UploadRequest carries the multipart form fields next to the file part.
type UploadRequest struct {
	Name        string `form:"name"        validate:"omitempty,min=3,max=100"`
	Description string `form:"description" validate:"max=500"`
	ProjectID   string `form:"projectId"   validate:"required,uuid"`
	Category    string `form:"category"    validate:"omitempty,oneof=contract report specification other"`
	Version     string `form:"version"     validate:"omitempty,docversion"`
}

type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FileType    string    `json:"fileType"`
	FileSize    int64     `json:"fileSize"`
	Category    string    `json:"category"`
	Version     string    `json:"version"`
	UploadedBy  string    `json:"uploadedBy"`
	ProjectID   string    `json:"projectId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListParams struct {
	Page      int
	PageSize  int
	ProjectID string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

var versionPattern = regexp.MustCompile(`^\d+\.\d+$`)

// RegisterValidators adds the docversion tag ("1.0", "12.3") to v.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("docversion", func(fl validator.FieldLevel) bool {
		return versionPattern.MatchString(fl.Field().String())
	})
}

func ToResponse(d *Document) Response {
	return Response{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		FileType:    d.FileType,
		FileSize:    d.FileSize,
		Category:    d.Category,
		Version:     d.Version,
		UploadedBy:  d.UploadedBy,
		ProjectID:   d.ProjectID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func ToResponseList(docs []Document) []Response {
	responses := make([]Response, 0, len(docs))
	for i := range docs {
		responses = append(responses, ToResponse(&docs[i]))
	}
	return responses
}
