package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/services"
)

// getUserIDFromContext extracts the authenticated user's id from the JWT
// claims placed in the context by the auth middleware. Returns 0 when absent.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}

// creatorIDFromContext is the opaque creator id string stored on posts.
func creatorIDFromContext(c echo.Context) string {
	return strconv.FormatUint(uint64(getUserIDFromContext(c)), 10)
}

// lifecycleHTTPError maps the lifecycle error kinds onto HTTP statuses so the
// client can show a retry prompt with the right wording.
func lifecycleHTTPError(err error) error {
	var uploadErr *services.UploadError
	var previewErr *services.PreviewError
	var persistErr *services.PersistError

	switch {
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.As(err, &uploadErr):
		return echo.NewHTTPError(http.StatusBadGateway, "Media upload failed, please retry")
	case errors.As(err, &previewErr):
		return echo.NewHTTPError(http.StatusBadGateway, "Media processing failed, please retry")
	case errors.As(err, &persistErr):
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not save changes, please retry")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
