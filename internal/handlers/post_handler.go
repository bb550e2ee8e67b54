package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/services"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	lifecycle *services.PostLifecycle
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(lifecycle *services.PostLifecycle) *PostHandler {
	return &PostHandler{lifecycle: lifecycle}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.PUT("/posts/:id/like", h.LikePost)
}

// mediaFromForm pulls the first uploaded file under the "file" key. Extra
// files are ignored.
func mediaFromForm(c echo.Context) (*services.MediaFile, multipart.File, error) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["file"]) == 0 {
		return nil, nil, nil
	}
	header := form.File["file"][0]
	src, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.MediaFile{Name: header.Filename, Reader: src}, src, nil
}

// CreatePost creates a new post with its mandatory media file
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	media, src, err := mediaFromForm(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
	}
	if media == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A media file is required")
	}
	defer src.Close()

	post, err := h.lifecycle.CreatePost(c.Request().Context(), creatorIDFromContext(c), req.Caption, req.Location, req.Tags, *media)
	if err != nil {
		return lifecycleHTTPError(err)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.lifecycle.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, post)
}

// UpdatePost edits an existing post, optionally replacing its media file
func (h *PostHandler) UpdatePost(c echo.Context) error {
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	existing, err := h.lifecycle.GetPost(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if existing.Creator != creatorIDFromContext(c) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	media, src, err := mediaFromForm(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
	}
	if src != nil {
		defer src.Close()
	}

	post, err := h.lifecycle.UpdatePost(c.Request().Context(), services.UpdatePostInput{
		PostID:      postID,
		Caption:     req.Caption,
		Location:    req.Location,
		TagsText:    req.Tags,
		ImageURL:    existing.ImageURL,
		ImageID:     existing.ImageID,
		Replacement: media,
	})
	if err != nil {
		return lifecycleHTTPError(err)
	}

	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post and, best-effort, its media file
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID := c.Param("id")

	existing, err := h.lifecycle.GetPost(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if existing.Creator != creatorIDFromContext(c) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.lifecycle.DeletePost(c.Request().Context(), postID, existing.ImageID); err != nil {
		return lifecycleHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// LikePost replaces the post's likes array with the client-computed set
func (h *PostHandler) LikePost(c echo.Context) error {
	var req models.LikePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	post, err := h.lifecycle.LikePost(c.Request().Context(), c.Param("id"), req.Likes)
	if err != nil {
		return lifecycleHTTPError(err)
	}

	return c.JSON(http.StatusOK, post)
}
