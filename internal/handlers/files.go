package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/storage"
)

// FileHandler serves preview renditions for locally stored media. It is only
// registered when the local storage backend is configured; with GCS the
// preview URLs point at the bucket directly.
type FileHandler struct {
	local *storage.LocalStorage
}

func NewFileHandler(local *storage.LocalStorage) *FileHandler {
	return &FileHandler{local: local}
}

// RegisterFileRoutes registers the public preview route
func (h *FileHandler) RegisterFileRoutes(e *echo.Echo) {
	e.GET("/files/:id/preview", h.Preview)
}

// Preview renders the stored image cropped to the requested bounding box
func (h *FileHandler) Preview(c echo.Context) error {
	opts := storage.PreviewOptions{
		Width:   intParam(c, "w", 2000),
		Height:  intParam(c, "h", 2000),
		Anchor:  c.QueryParam("anchor"),
		Quality: intParam(c, "q", 100),
	}

	fileID := c.Param("id")
	if !h.local.Exists(fileID) {
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	}

	c.Response().Header().Set(echo.HeaderContentType, "image/jpeg")
	c.Response().WriteHeader(http.StatusOK)
	if err := h.local.RenderPreview(fileID, opts, c.Response()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return nil
}

func intParam(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
