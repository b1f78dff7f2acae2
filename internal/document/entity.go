// AngelaMos | 2026
// entity.go

package document

import (
	"time"
)

type Document struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	StorageKey  string    `db:"storage_key"`
	FileType    string    `db:"file_type"`
	FileSize    int64     `db:"file_size"`
	Category    string    `db:"category"`
	Version     string    `db:"version"`
	UploadedBy  string    `db:"uploaded_by"`
	ProjectID   string    `db:"project_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const (
	CategoryContract      = "contract"
	CategoryReport        = "report"
	CategorySpecification = "specification"
	CategoryOther         = "other"
)

const DefaultVersion = "1.0"
