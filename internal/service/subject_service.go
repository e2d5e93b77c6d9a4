package service

import (
	"context"
	"strings"

	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
)

type SubjectService struct {
	repo *repository.SubjectRepository
}

func NewSubjectService(repo *repository.SubjectRepository) *SubjectService {
	return &SubjectService{repo: repo}
}

func (s *SubjectService) GetByID(ctx context.Context, id int) (*model.Subject, error) {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return subject, nil
}

func (s *SubjectService) GetAll(ctx context.Context) ([]model.Subject, error) {
	return s.repo.GetAll(ctx)
}

func (s *SubjectService) Create(ctx context.Context, req model.SubjectRequest) (*model.Subject, error) {
	subject := &model.Subject{
		Code: strings.ToUpper(strings.TrimSpace(req.Code)),
		Name: strings.TrimSpace(req.Name),
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, storeErr(err)
	}
	return subject, nil
}

// Update renames a subject. Existing sessions pick up the new name through the join.
func (s *SubjectService) Update(ctx context.Context, id int, req model.SubjectRequest) (*model.Subject, error) {
	subject := &model.Subject{
		ID:   id,
		Code: strings.ToUpper(strings.TrimSpace(req.Code)),
		Name: strings.TrimSpace(req.Name),
	}
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, storeErr(err)
	}
	return subject, nil
}

func (s *SubjectService) Delete(ctx context.Context, id int) error {
	return deleteErr(s.repo.Delete(ctx, id))
}
