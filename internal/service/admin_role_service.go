package service

import (
	"context"
	"strings"

	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
)

// AdminRoleService handles business logic for admin roles.
type AdminRoleService struct {
	roleRepo *repository.RoleRepository
}

// NewAdminRoleService creates a new AdminRoleService.
func NewAdminRoleService(roleRepo *repository.RoleRepository) *AdminRoleService {
	return &AdminRoleService{roleRepo: roleRepo}
}

// ListRoles retrieves all roles with their permissions.
func (s *AdminRoleService) ListRoles(ctx context.Context) ([]model.RoleWithPermissions, error) {
	return s.roleRepo.ListRolesWithPermissions(ctx)
}

// GetRoleByID retrieves a specific role and its permissions.
func (s *AdminRoleService) GetRoleByID(ctx context.Context, id int) (*model.RoleWithPermissions, error) {
	role, err := s.roleRepo.GetRoleByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return role, nil
}

// CreateRole creates a new role together with its permissions.
func (s *AdminRoleService) CreateRole(ctx context.Context, req model.RoleRequest) (*model.RoleWithPermissions, error) {
	id, err := s.roleRepo.CreateRole(ctx, strings.TrimSpace(req.Name), req.Permissions)
	if err != nil {
		return nil, storeErr(err)
	}
	return s.GetRoleByID(ctx, id)
}

// UpdateRole renames a role and replaces its permissions.
// The super admin role is managed by cmd/sync-permissions only.
func (s *AdminRoleService) UpdateRole(ctx context.Context, id int, req model.RoleRequest) (*model.RoleWithPermissions, error) {
	if id == model.SuperAdminRoleID {
		return nil, ErrProtected
	}
	if err := s.roleRepo.UpdateRole(ctx, id, strings.TrimSpace(req.Name), req.Permissions); err != nil {
		return nil, storeErr(err)
	}
	return s.GetRoleByID(ctx, id)
}

// DeleteRole deletes a role no admin holds.
func (s *AdminRoleService) DeleteRole(ctx context.Context, id int) error {
	if id == model.SuperAdminRoleID {
		return ErrProtected
	}
	return deleteErr(s.roleRepo.DeleteRole(ctx, id))
}

// GetAllPermissions retrieves all available system permission codes.
func (s *AdminRoleService) GetAllPermissions() []string {
	return model.PermissionStrings(model.AllPermissions)
}
