package service

import (
	"context"

	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
)

const dashboardListLimit = 5

// DashboardStore is implemented by repository.DashboardRepository.
type DashboardStore interface {
	GetSummaryCounts(ctx context.Context) (repository.DashboardCounts, error)
	GetSessionStatusCounts(ctx context.Context) (map[model.SessionStatus]int, error)
	GetTeacherLoads(ctx context.Context, limit int) ([]repository.DashboardTeacherLoad, error)
	GetRecentChanges(ctx context.Context, limit int) ([]repository.DashboardRecentChange, error)
}

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	Totals             repository.DashboardCounts         `json:"totals"`
	SessionStatusCount map[model.SessionStatus]int        `json:"session_status_counts"`
	BusiestTeachers    []repository.DashboardTeacherLoad  `json:"busiest_teachers"`
	RecentChanges      []repository.DashboardRecentChange `json:"recent_changes"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo DashboardStore
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo DashboardStore) *DashboardService {
	return &DashboardService{repo: repo}
}

// GetDashboardData fetches all dashboard metrics sequentially.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	totals, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.repo.GetSessionStatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	// Every status is reported, zero included.
	for _, st := range []model.SessionStatus{model.SessionStatusDraft, model.SessionStatusPublished, model.SessionStatusLocked} {
		if _, ok := statusCounts[st]; !ok {
			statusCounts[st] = 0
		}
	}

	loads, err := s.repo.GetTeacherLoads(ctx, dashboardListLimit)
	if err != nil {
		return nil, err
	}
	if loads == nil {
		loads = []repository.DashboardTeacherLoad{}
	}

	recent, err := s.repo.GetRecentChanges(ctx, dashboardListLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []repository.DashboardRecentChange{}
	}

	return &DashboardData{
		Totals:             totals,
		SessionStatusCount: statusCounts,
		BusiestTeachers:    loads,
		RecentChanges:      recent,
	}, nil
}
