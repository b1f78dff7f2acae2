// AngelaMos | 2026
// entity.go

package project

import (
	"time"
)

type Project struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Client      string    `db:"client"`
	Status      string    `db:"status"`
	Priority    string    `db:"priority"`
	Progress    int       `db:"progress"`
	StartDate   time.Time `db:"start_date"`
	EndDate     time.Time `db:"end_date"`
	Budget      *float64  `db:"budget"`
	ManagerID   string    `db:"manager_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const (
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusOnHold     = "on_hold"
	StatusCancelled  = "cancelled"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

const dateLayout = "2006-01-02"
