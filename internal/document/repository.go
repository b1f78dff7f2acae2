// AngelaMos | 2026
// repository.go

package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Deeazer/company-crm/internal/core"
)

type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context, params ListParams) ([]Document, int, error)
	Delete(ctx context.Context, id string) error
}

const documentColumns = `id, name, description, storage_key, file_type, file_size,
		       category, version, uploaded_by, project_id, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *Document) error {
	query := `
		INSERT INTO documents (id, name, description, storage_key, file_type,
		                       file_size, category, version, uploaded_by, project_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		d.ID,
		d.Name,
		d.Description,
		d.StorageKey,
		d.FileType,
		d.FileSize,
		d.Category,
		d.Version,
		d.UploadedBy,
		d.ProjectID,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create document: %w", core.ErrForeignKey)
		}
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create document: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1`

	var d Document
	err := r.db.GetContext(ctx, &d, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &d, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Document, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.ProjectID != "" {
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argIdx))
		args = append(args, params.ProjectID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM documents WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM documents
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		documentColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var docs []Document
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	return docs, total, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete document: %w", core.ErrNotFound)
	}

	return nil
}
