// Package httpapi exposes the service layer over a gin HTTP router: JSON
// binding, bearer-token principal extraction, role guards and the mapping
// of service errors onto status codes.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/accountd/accountd/internal/server/models"
)

// Handlers groups the route handlers wired by NewRouter.
type Handlers struct {
	Auth  *AuthHandler
	Users *UsersHandler
	Roles *RolesHandler
	Files *FilesHandler
}

// NewRouter builds the gin engine with all routes under /api. accessSecret
// verifies bearer tokens for the protected groups.
func NewRouter(h Handlers, accessSecret []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), localeMiddleware())

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/confirm-email", h.Auth.ConfirmEmail)
		authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
		authGroup.POST("/reset-password", h.Auth.ResetPassword)
		authGroup.GET("/confirm-email-change", h.Auth.ConfirmEmailChange)

		// The refresh and logout routes accept an expired access token;
		// the refresh token itself is what proves the session.
		stale := authGroup.Group("", staleAuthMiddleware(accessSecret))
		stale.POST("/refresh", h.Auth.Refresh)
		stale.POST("/logout", h.Auth.Logout)
		stale.POST("/logout-all", h.Auth.LogoutAll)

		authed := authGroup.Group("", authMiddleware(accessSecret))
		authed.POST("/change-password", h.Auth.ChangePassword)
		authed.POST("/change-email", h.Auth.ChangeEmail)
	}

	admin := api.Group("", authMiddleware(accessSecret), requireRole(models.RoleAdmin))
	{
		admin.GET("/users", h.Users.FindAll)
		admin.GET("/users/:id", h.Users.FindByID)
		admin.PUT("/users/:id", h.Users.Update)
		admin.DELETE("/users/:id", h.Users.Delete)
		admin.GET("/users/:id/roles", h.Users.Roles)
		admin.POST("/users/:id/roles", h.Users.AssignRole)
		admin.DELETE("/users/:id/roles/:roleID", h.Users.RemoveRole)

		admin.GET("/roles", h.Roles.FindAll)
		admin.GET("/roles/:id", h.Roles.FindByID)
		admin.POST("/roles", h.Roles.Create)
		admin.PUT("/roles/:id", h.Roles.Update)
		admin.DELETE("/roles/:id", h.Roles.Delete)
	}

	filesGroup := api.Group("/files", authMiddleware(accessSecret))
	{
		filesGroup.POST("", h.Files.Upload)
		filesGroup.GET("", h.Files.List)
		filesGroup.GET("/:id", h.Files.Download)
		filesGroup.DELETE("/:id", h.Files.Delete)
	}

	return r
}
