// AngelaMos | 2026
// stats.go

package dashboard

import (
	"time"
)

type Stats struct {
	TotalProjects   int              `json:"totalProjects"`
	ActiveProjects  int              `json:"activeProjects"`
	TotalDocuments  int              `json:"totalDocuments"`
	TotalUsers      int              `json:"totalUsers"`
	RecentProjects  []RecentProject  `json:"recentProjects"`
	RecentDocuments []RecentDocument `json:"recentDocuments"`
}

type RecentProject struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	Status    string    `json:"status"    db:"status"`
	Progress  int       `json:"progress"  db:"progress"`
	Manager   Person    `json:"manager"   db:"manager"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Person struct {
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName"  db:"last_name"`
}

type RecentDocument struct {
	ID        string     `json:"id"        db:"id"`
	Name      string     `json:"name"      db:"name"`
	FileType  string     `json:"fileType"  db:"file_type"`
	Project   ProjectRef `json:"project"   db:"project"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

type ProjectRef struct {
	ID   string `json:"id"   db:"id"`
	Name string `json:"name" db:"name"`
}
