package service

import (
	"context"

	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
)

// ClassService handles class business logic.
type ClassService struct {
	classRepo *repository.ClassRepository
}

// NewClassService creates a new ClassService.
func NewClassService(classRepo *repository.ClassRepository) *ClassService {
	return &ClassService{classRepo: classRepo}
}

// GetByID retrieves a class by its ID.
func (s *ClassService) GetByID(ctx context.Context, id int) (*model.Class, error) {
	c, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return c, nil
}

// List retrieves all classes.
func (s *ClassService) List(ctx context.Context) ([]model.Class, error) {
	return s.classRepo.List(ctx)
}

// ListIDs returns the id of every class.
func (s *ClassService) ListIDs(ctx context.Context) ([]int, error) {
	return s.classRepo.ListIDs(ctx)
}

// Create creates a new class. Grade, major and group are unique together.
func (s *ClassService) Create(ctx context.Context, req model.ClassRequest) (*model.Class, error) {
	class := &model.Class{
		GradeLevel:        req.GradeLevel,
		MajorCode:         req.MajorCode,
		GroupNumber:       req.GroupNumber,
		HomeroomTeacherID: req.HomeroomTeacherID,
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, storeErr(err)
	}
	return class, nil
}

// Update modifies an existing class.
func (s *ClassService) Update(ctx context.Context, id int, req model.ClassRequest) (*model.Class, error) {
	class := &model.Class{
		ID:                id,
		GradeLevel:        req.GradeLevel,
		MajorCode:         req.MajorCode,
		GroupNumber:       req.GroupNumber,
		HomeroomTeacherID: req.HomeroomTeacherID,
	}
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, storeErr(err)
	}
	return class, nil
}

// Delete removes a class. Classes that still have timetable sessions cannot be deleted.
func (s *ClassService) Delete(ctx context.Context, id int) error {
	return deleteErr(s.classRepo.Delete(ctx, id))
}
