package service

import (
	"context"
	"errors"

	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
)

// Staff account errors.
var (
	ErrEmailTaken = errors.New("email already registered")
	ErrDeleteSelf = errors.New("cannot delete your own account")
)

// AdminService handles staff accounts: sign-in lookups and user management.
type AdminService struct {
	adminRepo *repository.AdminRepository
	roleRepo  *repository.RoleRepository
	auth      *AuthService
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository, roleRepo *repository.RoleRepository, auth *AuthService) *AdminService {
	return &AdminService{adminRepo: adminRepo, roleRepo: roleRepo, auth: auth}
}

// GetByEmail retrieves an admin by email.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	a, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	return a, nil
}

// GetByID retrieves an admin by ID.
func (s *AdminService) GetByID(ctx context.Context, id int) (*model.Admin, error) {
	a, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return a, nil
}

// GetPermissions retrieves permission codes for an admin's role.
func (s *AdminService) GetPermissions(ctx context.Context, roleID int) ([]string, error) {
	return s.roleRepo.GetPermissionsByRoleID(ctx, roleID)
}

// List returns a page of admins and the total count.
func (s *AdminService) List(ctx context.Context, roleID, page, perPage int) ([]model.Admin, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return s.adminRepo.List(ctx, roleID, perPage, (page-1)*perPage)
}

// Create registers a new staff account.
func (s *AdminService) Create(ctx context.Context, req model.CreateAdminRequest) (*model.Admin, error) {
	taken, err := s.adminRepo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &model.Admin{Email: req.Email, Name: req.Name, PasswordHash: hash, RoleID: req.RoleID}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, storeErr(err)
	}
	return s.GetByID(ctx, admin.ID)
}

// Update modifies a staff account. The password changes only when one is given.
func (s *AdminService) Update(ctx context.Context, id int, req model.UpdateAdminRequest) (*model.Admin, error) {
	taken, err := s.adminRepo.EmailTaken(ctx, req.Email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	admin := &model.Admin{ID: id, Email: req.Email, Name: req.Name, RoleID: req.RoleID}
	if req.Password != "" {
		if admin.PasswordHash, err = s.auth.HashPassword(req.Password); err != nil {
			return nil, err
		}
	}
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return nil, storeErr(err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes a staff account other than the caller's own.
func (s *AdminService) Delete(ctx context.Context, actorID, id int) error {
	if actorID == id {
		return ErrDeleteSelf
	}
	return deleteErr(s.adminRepo.Delete(ctx, id))
}
