package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/response"
	"github.com/stemsi/jadwal-backend/internal/service"
	"github.com/stemsi/jadwal-backend/internal/validator"
)

// AdminUserHandler manages staff accounts.
type AdminUserHandler struct {
	admins *service.AdminService
	roles  *service.AdminRoleService
}

func NewAdminUserHandler(admins *service.AdminService, roles *service.AdminRoleService) *AdminUserHandler {
	return &AdminUserHandler{admins: admins, roles: roles}
}

// ListAdmins godoc
// GET /api/v1/admin/users?page=&per_page=&role_id=
func (h *AdminUserHandler) ListAdmins(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	roleID, _ := strconv.Atoi(c.Query("role_id"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	admins, total, err := h.admins.List(c.Request.Context(), roleID, page, perPage)
	if err != nil {
		failService(c, err)
		return
	}
	if admins == nil {
		admins = []model.Admin{}
	}

	response.SuccessWithPagination(c, http.StatusOK, admins, response.NewPagination(page, perPage, total))
}

// CreateAdmin godoc
// POST /api/v1/admin/users
func (h *AdminUserHandler) CreateAdmin(c *gin.Context) {
	var req model.CreateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.admins.Create(c.Request.Context(), req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"admin": admin})
}

// UpdateAdmin godoc
// PUT /api/v1/admin/users/:id
// An empty password keeps the current one.
func (h *AdminUserHandler) UpdateAdmin(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.admins.Update(c.Request.Context(), id, req)
	if err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"admin": admin})
}

// DeleteAdmin godoc
// DELETE /api/v1/admin/users/:id
func (h *AdminUserHandler) DeleteAdmin(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	if err := h.admins.Delete(c.Request.Context(), actorID(c), id); err != nil {
		failService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Admin deleted successfully"})
}

// GetRoles lists roles for the user form's role picker.
func (h *AdminUserHandler) GetRoles(c *gin.Context) {
	roles, err := h.roles.ListRoles(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	if roles == nil {
		roles = []model.RoleWithPermissions{}
	}
	response.Success(c, http.StatusOK, gin.H{"roles": roles})
}
