package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/server/services"
)

// FilesHandler serves the authenticated file routes.
type FilesHandler struct {
	filesService *services.FilesService
}

// NewFilesHandler constructs a FilesHandler.
func NewFilesHandler(filesService *services.FilesService) *FilesHandler {
	return &FilesHandler{filesService: filesService}
}

func principalID(c *gin.Context) (int64, error) {
	claims := claimsFrom(c)
	if claims == nil {
		return 0, common.NewAuthenticationError("auth.errors.missing_token")
	}
	return claims.UserID()
}

// POST /api/files (multipart, field "file")
func (h *FilesHandler) Upload(c *gin.Context) {
	userID, err := principalID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		writeBindError(c)
		return
	}

	src, err := header.Open()
	if err != nil {
		writeError(c, common.ErrInternal)
		return
	}
	defer src.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, err := h.filesService.Upload(c.Request.Context(), userID, header.Filename, contentType, header.Size, src)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// GET /api/files
func (h *FilesHandler) List(c *gin.Context) {
	userID, err := principalID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	files, err := h.filesService.FindByOwner(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// GET /api/files/:id
func (h *FilesHandler) Download(c *gin.Context) {
	userID, err := principalID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	file, rc, err := h.filesService.Download(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Header("Content-Type", file.MimeType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, rc)
}

// DELETE /api/files/:id
func (h *FilesHandler) Delete(c *gin.Context) {
	userID, err := principalID(c)
	if err != nil {
		writeError(c, err)
		return
	}
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.filesService.Delete(c.Request.Context(), userID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "ok"})
}
