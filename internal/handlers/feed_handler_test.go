package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/services"
	"github.com/snapgram-app/backend/pkg/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserRepo serves user lookups for enrichment tests.
type stubUserRepo struct {
	users map[uint]*models.User
}

func (r *stubUserRepo) CreateUser(user *models.User) error { return nil }

func (r *stubUserRepo) GetUserByID(id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetUserByEmail(email string) (*models.User, error) {
	return nil, models.ErrNotFound
}

func (r *stubUserRepo) GetUserByFirebaseUID(uid string) (*models.User, error) {
	return nil, models.ErrNotFound
}

func (r *stubUserRepo) GetUsers(limit int) ([]models.User, error) { return nil, nil }

func (r *stubUserRepo) SearchUsers(query string) ([]models.User, error) { return nil, nil }

func (r *stubUserRepo) UpdateUser(user *models.User) error { return nil }

// stubSavedRepo answers saved-flag lookups from a fixed set.
type stubSavedRepo struct {
	savedPostIDs map[string]bool
}

func (r *stubSavedRepo) SavePost(savedPost *models.SavedPost) error { return nil }

func (r *stubSavedRepo) UnsavePost(savedRecordID uint) error { return nil }

func (r *stubSavedRepo) GetSavedRecord(userID uint, postID string) (*models.SavedPost, error) {
	return nil, models.ErrNotFound
}

func (r *stubSavedRepo) GetSavedPostsByUser(userID uint) ([]models.SavedPost, error) {
	return nil, nil
}

func (r *stubSavedRepo) GetSavedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range postIDs {
		if r.savedPostIDs[id] {
			out[id] = true
		}
	}
	return out, nil
}

type feedResponse struct {
	Posts      []EnrichedPost `json:"posts"`
	NextCursor string         `json:"next_cursor"`
}

func TestFeedHandler_GetRecentPosts_Enrichment(t *testing.T) {
	e := echo.New()
	e.Validator = validators.NewValidator()

	postRepo := newMemPostRepo()
	files := newMemFileStore()
	savedRepo := &stubSavedRepo{savedPostIDs: map[string]bool{}}
	userRepo := &stubUserRepo{users: map[uint]*models.User{
		9: {ID: 9, Name: "Ana", Username: "ana", ImageURL: "http://files.test/ana.jpg"},
	}}

	lifecycle := services.NewPostLifecycle(postRepo, savedRepo, files)
	h := NewFeedHandler(lifecycle, userRepo, savedRepo, nil)

	post := &models.Post{Creator: "9", Caption: "morning run", Likes: []string{"7"}}
	require.NoError(t, postRepo.CreatePost(t.Context(), post))
	savedRepo.savedPostIDs[post.ID.Hex()] = true

	req := httptest.NewRequest(http.MethodGet, "/posts/recent", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", &models.JwtCustomClaims{UserID: 7})

	require.NoError(t, h.GetRecentPosts(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp feedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 1)

	got := resp.Posts[0]
	assert.Equal(t, "ana", got.Author.Username)
	assert.True(t, got.IsLiked, "user 7 is in the likes array")
	assert.True(t, got.IsSaved, "user 7 saved this post")
}

func TestFeedHandler_UnknownAuthorDegradesToEmpty(t *testing.T) {
	e := echo.New()

	postRepo := newMemPostRepo()
	savedRepo := &stubSavedRepo{savedPostIDs: map[string]bool{}}
	userRepo := &stubUserRepo{users: map[uint]*models.User{}}

	lifecycle := services.NewPostLifecycle(postRepo, savedRepo, newMemFileStore())
	h := NewFeedHandler(lifecycle, userRepo, savedRepo, nil)

	post := &models.Post{Creator: "404", Caption: "orphaned", Likes: []string{}}
	require.NoError(t, postRepo.CreatePost(t.Context(), post))

	req := httptest.NewRequest(http.MethodGet, "/posts/recent", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", &models.JwtCustomClaims{UserID: 7})

	require.NoError(t, h.GetRecentPosts(c))

	var resp feedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 1)
	assert.Zero(t, resp.Posts[0].Author.ID)
	assert.False(t, resp.Posts[0].IsLiked)
	assert.False(t, resp.Posts[0].IsSaved)
}

func TestFeedHandler_SearchRequiresQuery(t *testing.T) {
	e := echo.New()
	h := NewFeedHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/posts/search", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SearchPosts(c)
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
}
