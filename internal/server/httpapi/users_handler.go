package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/server/services"
)

// UsersHandler serves the admin user-management routes.
type UsersHandler struct {
	usersService *services.UsersService
	rolesService *services.RolesService
}

// NewUsersHandler constructs a UsersHandler.
func NewUsersHandler(usersService *services.UsersService, rolesService *services.RolesService) *UsersHandler {
	return &UsersHandler{usersService: usersService, rolesService: rolesService}
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, common.ErrNotFound
	}
	return id, nil
}

// GET /api/users
func (h *UsersHandler) FindAll(c *gin.Context) {
	users, err := h.usersService.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /api/users/:id
func (h *UsersHandler) FindByID(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	user, err := h.usersService.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUT /api/users/:id
func (h *UsersHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}

	user, err := h.usersService.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	user.Username = req.Username
	user.Email = req.Email
	user.IsActive = req.IsActive

	updated, err := h.usersService.Update(c.Request.Context(), user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/users/:id
func (h *UsersHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.usersService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}

// GET /api/users/:id/roles
func (h *UsersHandler) Roles(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	roles, err := h.rolesService.GetUserRoles(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// POST /api/users/:id/roles
func (h *UsersHandler) AssignRole(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}

	link, err := h.rolesService.AssignRole(c.Request.Context(), id, req.RoleID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// DELETE /api/users/:id/roles/:roleID
func (h *UsersHandler) RemoveRole(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}
	roleID, err := strconv.ParseInt(c.Param("roleID"), 10, 64)
	if err != nil {
		writeError(c, common.ErrNotFound)
		return
	}

	if err := h.rolesService.RemoveRole(c.Request.Context(), id, roleID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}
