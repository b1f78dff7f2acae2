// AngelaMos | 2026
// repository.go

package dashboard

import (
	"context"
	"fmt"

	"github.com/Deeazer/company-crm/internal/core"
)

const recentLimit = 5

type Repository interface {
	Stats(ctx context.Context) (*Stats, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

type totalsRow struct {
	TotalProjects  int `db:"total_projects"`
	ActiveProjects int `db:"active_projects"`
	TotalDocuments int `db:"total_documents"`
	TotalUsers     int `db:"total_users"`
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	var totals totalsRow
	err := r.db.GetContext(ctx, &totals, `
		SELECT
			(SELECT COUNT(*) FROM projects) AS total_projects,
			(SELECT COUNT(*) FROM projects WHERE status = 'in_progress') AS active_projects,
			(SELECT COUNT(*) FROM documents) AS total_documents,
			(SELECT COUNT(*) FROM users) AS total_users`)
	if err != nil {
		return nil, fmt.Errorf("dashboard totals: %w", err)
	}

	recentProjects := []RecentProject{}
	err = r.db.SelectContext(ctx, &recentProjects, `
		SELECT p.id, p.name, p.status, p.progress, p.created_at,
		       u.first_name AS "manager.first_name",
		       u.last_name AS "manager.last_name"
		FROM projects p
		JOIN users u ON u.id = p.manager_id
		ORDER BY p.created_at DESC
		LIMIT $1`, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard recent projects: %w", err)
	}

	recentDocuments := []RecentDocument{}
	err = r.db.SelectContext(ctx, &recentDocuments, `
		SELECT d.id, d.name, d.file_type, d.created_at,
		       p.id AS "project.id",
		       p.name AS "project.name"
		FROM documents d
		JOIN projects p ON p.id = d.project_id
		ORDER BY d.created_at DESC
		LIMIT $1`, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard recent documents: %w", err)
	}

	return &Stats{
		TotalProjects:   totals.TotalProjects,
		ActiveProjects:  totals.ActiveProjects,
		TotalDocuments:  totals.TotalDocuments,
		TotalUsers:      totals.TotalUsers,
		RecentProjects:  recentProjects,
		RecentDocuments: recentDocuments,
	}, nil
}
