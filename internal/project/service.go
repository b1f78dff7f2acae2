// AngelaMos | 2026
// service.go

package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Deeazer/company-crm/internal/core"
)

var (
	ErrInvalidDates    = errors.New("end date is before start date")
	ErrManagerNotFound = errors.New("manager not found")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new project. An empty ManagerID makes the requester the
// manager.
func (s *Service) Create(
	ctx context.Context,
	requesterID string,
	req CreateProjectRequest,
) (*Project, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parse start date: %w", core.ErrInvalidInput)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("parse end date: %w", core.ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, ErrInvalidDates
	}

	p := &Project{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Client:      req.Client,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   start,
		EndDate:     end,
		Budget:      req.Budget,
		ManagerID:   req.ManagerID,
	}
	if p.Status == "" {
		p.Status = StatusPlanning
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if req.Progress != nil {
		p.Progress = *req.Progress
	}
	if p.ManagerID == "" {
		p.ManagerID = requesterID
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, core.ErrForeignKey) {
			return nil, ErrManagerNotFound
		}
		return nil, err
	}

	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]Project, int, error) {
	return s.repo.List(ctx, params)
}

// Exists lets collaborators check a project reference without loading it.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}
