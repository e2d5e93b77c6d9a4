package service

import (
	"context"
	"strings"

	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
)

// TeacherService handles teacher business logic.
type TeacherService struct {
	repo *repository.TeacherRepository
}

// NewTeacherService creates a new TeacherService.
func NewTeacherService(repo *repository.TeacherRepository) *TeacherService {
	return &TeacherService{repo: repo}
}

// GetByID retrieves a teacher.
func (s *TeacherService) GetByID(ctx context.Context, id int) (*model.Teacher, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return t, nil
}

// List retrieves all teachers.
func (s *TeacherService) List(ctx context.Context) ([]model.Teacher, error) {
	return s.repo.List(ctx)
}

// Create adds a teacher, optionally linked to a staff account.
func (s *TeacherService) Create(ctx context.Context, req model.TeacherRequest) (*model.Teacher, error) {
	t := &model.Teacher{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		AdminID: req.AdminID,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, storeErr(err)
	}
	return t, nil
}

// Update modifies a teacher.
func (s *TeacherService) Update(ctx context.Context, id int, req model.TeacherRequest) (*model.Teacher, error) {
	t := &model.Teacher{
		ID:      id,
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		AdminID: req.AdminID,
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, storeErr(err)
	}
	return t, nil
}

// Delete removes a teacher who no longer has sessions.
func (s *TeacherService) Delete(ctx context.Context, id int) error {
	return deleteErr(s.repo.Delete(ctx, id))
}
