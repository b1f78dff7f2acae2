// AngelaMos | 2026
// repository.go

package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Deeazer/company-crm/internal/core"
)

type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, params ListParams) ([]Project, int, error)
}

// budget is NUMERIC; the cast keeps scanning into *float64 driver-agnostic.
const projectColumns = `id, name, description, client, status, priority, progress,
		       start_date, end_date, budget::float8 AS budget, manager_id,
		       created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Project) error {
	query := `
		INSERT INTO projects (id, name, description, client, status, priority,
		                      progress, start_date, end_date, budget, manager_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Client,
		p.Status,
		p.Priority,
		p.Progress,
		p.StartDate,
		p.EndDate,
		p.Budget,
		p.ManagerID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create project: %w", core.ErrForeignKey)
		}
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1`

	var p Project
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &p, nil
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("project exists: %w", err)
	}
	return exists, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Project, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM projects WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM projects
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		projectColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var projects []Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}

	return projects, total, nil
}
