package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/repositories"
	"github.com/snapgram-app/backend/internal/services"
)

// SavedPostHandler handles saved post HTTP requests
type SavedPostHandler struct {
	lifecycle           *services.PostLifecycle
	savedPostRepository repositories.SavedPostRepository
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(lifecycle *services.PostLifecycle, savedPostRepo repositories.SavedPostRepository) *SavedPostHandler {
	return &SavedPostHandler{
		lifecycle:           lifecycle,
		savedPostRepository: savedPostRepo,
	}
}

// RegisterSavedPostRoutes registers saved post routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/:id/save", h.SavePost)
	g.DELETE("/saves/:id", h.UnsavePost)
	g.GET("/saves", h.GetSavedPosts)
}

// SavePost bookmarks a post. The pre-check is advisory only; nothing
// enforces uniqueness of (user, post) at the storage layer.
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID := c.Param("id")

	// Verify post exists
	if _, err := h.lifecycle.GetPost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	if existing, err := h.savedPostRepository.GetSavedRecord(currentUserID, postID); err == nil {
		return c.JSON(http.StatusOK, existing)
	}

	saved, err := h.lifecycle.SavePost(currentUserID, postID)
	if err != nil {
		return lifecycleHTTPError(err)
	}

	return c.JSON(http.StatusCreated, saved)
}

// UnsavePost removes a saved record by its own id
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	savedID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid saved record ID")
	}

	// Only the owner may remove their record.
	recs, err := h.savedPostRepository.GetSavedPostsByUser(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	owned := false
	for _, r := range recs {
		if r.ID == uint(savedID) {
			owned = true
			break
		}
	}
	if !owned {
		return echo.NewHTTPError(http.StatusNotFound, "Saved record not found")
	}

	if err := h.lifecycle.UnsavePost(uint(savedID)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Saved record not found")
		}
		return lifecycleHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetSavedPosts lists the current user's saved records, newest first
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	saved, err := h.savedPostRepository.GetSavedPostsByUser(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"saved": saved})
}
