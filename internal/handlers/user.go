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

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	profileService *services.ProfileService
	lifecycle      *services.PostLifecycle
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, profileService *services.ProfileService, lifecycle *services.PostLifecycle) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		profileService: profileService,
		lifecycle:      lifecycle,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetMe)
	g.PUT("/users/me", h.UpdateProfile)
	g.GET("/users", h.GetUsers)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/posts", h.GetUserPosts)
}

// GetMe retrieves the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser retrieves another user's profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	user, err := h.userRepository.GetUserByID(uint(id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// GetUsers lists users, newest first, optionally limited
func (h *UserHandler) GetUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	users, err := h.userRepository.GetUsers(limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// GetUserPosts lists a user's posts, newest first
func (h *UserHandler) GetUserPosts(c echo.Context) error {
	posts, err := h.lifecycle.UserPosts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return lifecycleHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// UpdateProfile edits the authenticated user's profile, optionally replacing
// the avatar image (same ordering guarantees as post media replacement)
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	avatar, src, err := mediaFromForm(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
	}
	if src != nil {
		defer src.Close()
	}

	updated, err := h.profileService.UpdateProfile(c.Request().Context(), user, req.Name, req.Bio, avatar)
	if err != nil {
		return lifecycleHTTPError(err)
	}

	return c.JSON(http.StatusOK, updated)
}

// SearchUsers searches for users by a query string (name or username)
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

func (h *UserHandler) currentUser(c echo.Context) (*models.User, error) {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return user, nil
}
