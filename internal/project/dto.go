// AngelaMos | 2026
// dto.go

package project

import (
	"time"
)

type CreateProjectRequest struct {
	Name        string   `json:"name"        validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Client      string   `json:"client"      validate:"required,min=1,max=200"`
	Status      string   `json:"status"      validate:"omitempty,oneof=planning in_progress completed on_hold cancelled"`
	Priority    string   `json:"priority"    validate:"omitempty,oneof=low medium high critical"`
	Progress    *int     `json:"progress"    validate:"omitempty,min=0,max=100"`
	StartDate   string   `json:"startDate"   validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"endDate"     validate:"required,datetime=2006-01-02"`
	Budget      *float64 `json:"budget"      validate:"omitempty,min=0"`
	ManagerID   string   `json:"managerId"   validate:"omitempty,uuid"`
}

type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Client      string    `json:"client"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Progress    int       `json:"progress"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Budget      *float64  `json:"budget"`
	ManagerID   string    `json:"managerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListParams struct {
	Page     int
	PageSize int
	Status   string
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

func ToResponse(p *Project) Response {
	return Response{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Client:      p.Client,
		Status:      p.Status,
		Priority:    p.Priority,
		Progress:    p.Progress,
		StartDate:   p.StartDate.Format(dateLayout),
		EndDate:     p.EndDate.Format(dateLayout),
		Budget:      p.Budget,
		ManagerID:   p.ManagerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToResponseList(projects []Project) []Response {
	responses := make([]Response, 0, len(projects))
	for i := range projects {
		responses = append(responses, ToResponse(&projects[i]))
	}
	return responses
}
