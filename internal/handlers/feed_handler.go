package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/repositories"
	"github.com/snapgram-app/backend/internal/services"
	"github.com/snapgram-app/backend/pkg/cache"
	"github.com/snapgram-app/backend/pkg/logger"
	"go.uber.org/zap"
)

const authorCacheTTL = 5 * time.Minute

// FeedHandler handles feed and search HTTP requests
type FeedHandler struct {
	lifecycle           *services.PostLifecycle
	userRepository      repositories.UserRepository
	savedPostRepository repositories.SavedPostRepository
	authorCache         *cache.Cache
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	lifecycle *services.PostLifecycle,
	userRepo repositories.UserRepository,
	savedPostRepo repositories.SavedPostRepository,
	authorCache *cache.Cache,
) *FeedHandler {
	return &FeedHandler{
		lifecycle:           lifecycle,
		userRepository:      userRepo,
		savedPostRepository: savedPostRepo,
		authorCache:         authorCache,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/posts/recent", h.GetRecentPosts)
	g.GET("/posts/search", h.SearchPosts)
}

// EnrichedPost is a post with author info and user-specific flags
type EnrichedPost struct {
	models.Post
	Author  models.UserCompact `json:"author"`
	IsLiked bool               `json:"is_liked"`
	IsSaved bool               `json:"is_saved"`
}

// GetFeed returns one page of the infinite feed. The cursor query param is
// the id of the last post from the previous page.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	page, err := h.lifecycle.ListFeed(c.Request().Context(), c.QueryParam("cursor"))
	if err != nil {
		return lifecycleHTTPError(err)
	}

	enriched := h.enrich(c, page.Posts)

	return c.JSON(http.StatusOK, echo.Map{
		"posts":       enriched,
		"next_cursor": page.NextCursor,
	})
}

// GetRecentPosts returns the newest posts for the home feed
func (h *FeedHandler) GetRecentPosts(c echo.Context) error {
	posts, err := h.lifecycle.RecentPosts(c.Request().Context())
	if err != nil {
		return lifecycleHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": h.enrich(c, posts)})
}

// SearchPosts matches the term against captions only
func (h *FeedHandler) SearchPosts(c echo.Context) error {
	term := c.QueryParam("q")
	if term == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	posts, err := h.lifecycle.SearchPosts(c.Request().Context(), term)
	if err != nil {
		return lifecycleHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": h.enrich(c, posts)})
}

// enrich attaches author profiles and the current user's like/save flags.
func (h *FeedHandler) enrich(c echo.Context, posts []models.Post) []EnrichedPost {
	currentUserID := getUserIDFromContext(c)
	currentCreatorID := creatorIDFromContext(c)

	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID.Hex()
	}

	savedMap := map[string]bool{}
	if currentUserID > 0 {
		var err error
		savedMap, err = h.savedPostRepository.GetSavedPostIDs(currentUserID, postIDs)
		if err != nil {
			logger.Log.Warn("saved flags lookup failed", zap.Error(err))
			savedMap = map[string]bool{}
		}
	}

	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		enriched[i] = EnrichedPost{
			Post:    p,
			Author:  h.author(c, p.Creator),
			IsLiked: containsLiker(p.Likes, currentCreatorID),
			IsSaved: savedMap[p.ID.Hex()],
		}
	}
	return enriched
}

// author resolves a creator id to its compact profile, via the redis cache
// when configured. Cache failures degrade to a database read.
func (h *FeedHandler) author(c echo.Context, creatorID string) models.UserCompact {
	ctx := c.Request().Context()
	key := "user:compact:" + creatorID

	var compact models.UserCompact
	if err := h.authorCache.GetJSON(ctx, key, &compact); err == nil {
		return compact
	}

	id, err := strconv.ParseUint(creatorID, 10, 32)
	if err != nil {
		return models.UserCompact{}
	}
	user, err := h.userRepository.GetUserByID(uint(id))
	if err != nil {
		return models.UserCompact{}
	}

	compact = user.ToCompact()
	if err := h.authorCache.SetJSON(ctx, key, compact, authorCacheTTL); err != nil {
		logger.Log.Warn("author cache write failed", zap.String("key", key), zap.Error(err))
	}
	return compact
}

func containsLiker(likes []string, userID string) bool {
	for _, id := range likes {
		if id == userID {
			return true
		}
	}
	return false
}
