package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accountd/accountd/internal/server/services"
)

// RolesHandler serves the admin role-catalog routes.
type RolesHandler struct {
	rolesService *services.RolesService
}

// NewRolesHandler constructs a RolesHandler.
func NewRolesHandler(rolesService *services.RolesService) *RolesHandler {
	return &RolesHandler{rolesService: rolesService}
}

// GET /api/roles
func (h *RolesHandler) FindAll(c *gin.Context) {
	roles, err := h.rolesService.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// GET /api/roles/:id
func (h *RolesHandler) FindByID(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	role, err := h.rolesService.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

// POST /api/roles
func (h *RolesHandler) Create(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}

	role, err := h.rolesService.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

// PUT /api/roles/:id
func (h *RolesHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c)
		return
	}

	role, err := h.rolesService.Update(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

// DELETE /api/roles/:id
func (h *RolesHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.rolesService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}
