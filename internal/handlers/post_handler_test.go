package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/services"
	"github.com/snapgram-app/backend/internal/storage"
	"github.com/snapgram-app/backend/pkg/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memPostRepo is an in-memory stand-in for the Mongo repository.
type memPostRepo struct {
	posts map[string]*models.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[string]*models.Post)}
}

func (r *memPostRepo) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	stored := *post
	r.posts[post.ID.Hex()] = &stored
	return nil
}

func (r *memPostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *memPostRepo) GetRecentPosts(ctx context.Context, limit int64) ([]models.Post, error) {
	return r.all(), nil
}

func (r *memPostRepo) GetFeedPage(ctx context.Context, cursor string, limit int64) ([]models.Post, error) {
	return r.all(), nil
}

func (r *memPostRepo) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.posts {
		if strings.Contains(strings.ToLower(p.Caption), strings.ToLower(term)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPostRepo) GetPostsByCreator(ctx context.Context, creatorID string) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.posts {
		if p.Creator == creatorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPostRepo) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	existing, ok := r.posts[id]
	if !ok {
		return models.ErrNotFound
	}
	existing.Caption = post.Caption
	existing.Location = post.Location
	existing.Tags = post.Tags
	existing.ImageURL = post.ImageURL
	existing.ImageID = post.ImageID
	return nil
}

func (r *memPostRepo) UpdateLikes(ctx context.Context, id string, likes []string) error {
	existing, ok := r.posts[id]
	if !ok {
		return models.ErrNotFound
	}
	existing.Likes = likes
	return nil
}

func (r *memPostRepo) DeletePost(ctx context.Context, id string) error {
	if _, ok := r.posts[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) all() []models.Post {
	out := []models.Post{}
	for _, p := range r.posts {
		out = append(out, *p)
	}
	return out
}

// memFileStore is an in-memory stand-in for the file store.
type memFileStore struct {
	files map[string][]byte
	next  int
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[string][]byte)}
}

func (s *memFileStore) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.next++
	id := fmt.Sprintf("file-%d.jpg", s.next)
	s.files[id] = data
	return id, nil
}

func (s *memFileStore) PreviewURL(fileID string, opts storage.PreviewOptions) (string, error) {
	if fileID == "" {
		return "", models.ErrNotFound
	}
	return "http://files.test/" + fileID, nil
}

func (s *memFileStore) Delete(ctx context.Context, fileID string) error {
	if _, ok := s.files[fileID]; !ok {
		return models.ErrNotFound
	}
	delete(s.files, fileID)
	return nil
}

type postHandlerFixture struct {
	e       *echo.Echo
	handler *PostHandler
	repo    *memPostRepo
	files   *memFileStore
}

func newPostHandlerFixture() *postHandlerFixture {
	e := echo.New()
	e.Validator = validators.NewValidator()
	repo := newMemPostRepo()
	files := newMemFileStore()
	lifecycle := services.NewPostLifecycle(repo, nil, files)
	return &postHandlerFixture{e: e, handler: NewPostHandler(lifecycle), repo: repo, files: files}
}

func (f *postHandlerFixture) authedContext(req *http.Request, rec *httptest.ResponseRecorder, userID uint) echo.Context {
	c := f.e.NewContext(req, rec)
	c.Set("user", &models.JwtCustomClaims{UserID: userID})
	return c
}

func (f *postHandlerFixture) seedPost(creator string) *models.Post {
	post := &models.Post{
		Creator:  creator,
		Caption:  "seeded post",
		Location: "Lisbon",
		Tags:     []string{"travel"},
		ImageURL: "http://files.test/seed.jpg",
		ImageID:  "seed.jpg",
		Likes:    []string{},
	}
	_ = f.repo.CreatePost(context.Background(), post)
	f.files.files["seed.jpg"] = []byte("seed")
	return post
}

func multipartRequest(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if withFile {
		part, err := writer.CreateFormFile("file", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()
	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *echo.HTTPError, got %v", err)
	return httpErr.Code
}

func TestPostHandler_CreatePost(t *testing.T) {
	f := newPostHandlerFixture()

	req := multipartRequest(t, map[string]string{
		"caption":  "sunset over the bay",
		"location": "Lisbon",
		"tags":     "travel, sea",
	}, true)
	rec := httptest.NewRecorder()
	c := f.authedContext(req, rec, 7)

	require.NoError(t, f.handler.CreatePost(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "7", created.Creator)
	assert.Equal(t, []string{"travel", "sea"}, created.Tags)
	assert.Equal(t, "http://files.test/file-1.jpg", created.ImageURL)

	assert.Len(t, f.repo.posts, 1)
	assert.Contains(t, f.files.files, "file-1.jpg")
}

func TestPostHandler_CreatePost_MissingFile(t *testing.T) {
	f := newPostHandlerFixture()

	req := multipartRequest(t, map[string]string{
		"caption":  "sunset over the bay",
		"location": "Lisbon",
	}, false)
	rec := httptest.NewRecorder()
	c := f.authedContext(req, rec, 7)

	err := f.handler.CreatePost(c)
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
	assert.Empty(t, f.repo.posts)
}

func TestPostHandler_CreatePost_CaptionTooShort(t *testing.T) {
	f := newPostHandlerFixture()

	req := multipartRequest(t, map[string]string{
		"caption":  "x",
		"location": "Lisbon",
	}, true)
	rec := httptest.NewRecorder()
	c := f.authedContext(req, rec, 7)

	err := f.handler.CreatePost(c)
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
	assert.Empty(t, f.files.files, "no upload happens when validation fails")
}

func TestPostHandler_UpdatePost_NotOwner(t *testing.T) {
	f := newPostHandlerFixture()
	post := f.seedPost("9")

	req := multipartRequest(t, map[string]string{
		"caption":  "hijacked caption",
		"location": "Lisbon",
	}, false)
	req.Method = http.MethodPut
	rec := httptest.NewRecorder()
	c := f.authedContext(req, rec, 7)
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())

	err := f.handler.UpdatePost(c)
	assert.Equal(t, http.StatusForbidden, httpErrorCode(t, err))

	unchanged, _ := f.repo.GetPostByID(context.Background(), post.ID.Hex())
	assert.Equal(t, "seeded post", unchanged.Caption)
}

func TestPostHandler_UpdatePost_ReplacesMedia(t *testing.T) {
	f := newPostHandlerFixture()
	post := f.seedPost("7")

	req := multipartRequest(t, map[string]string{
		"caption":  "updated caption",
		"location": "Porto",
	}, true)
	req.Method = http.MethodPut
	rec := httptest.NewRecorder()
	c := f.authedContext(req, rec, 7)
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())

	require.NoError(t, f.handler.UpdatePost(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	updated, err := f.repo.GetPostByID(context.Background(), post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "updated caption", updated.Caption)
	assert.Equal(t, "file-1.jpg", updated.ImageID)

	// Old file is gone once the document points at the new one.
	assert.NotContains(t, f.files.files, "seed.jpg")
	assert.Contains(t, f.files.files, "file-1.jpg")
}

func TestPostHandler_DeletePost(t *testing.T) {
	f := newPostHandlerFixture()
	post := f.seedPost("7")

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := f.authedContext(req, rec, 7)
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())

	require.NoError(t, f.handler.DeletePost(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.repo.posts)
	assert.NotContains(t, f.files.files, "seed.jpg")
}

func TestPostHandler_DeletePost_NotFound(t *testing.T) {
	f := newPostHandlerFixture()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := f.authedContext(req, rec, 7)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())

	err := f.handler.DeletePost(c)
	assert.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
}

func TestPostHandler_LikePost(t *testing.T) {
	f := newPostHandlerFixture()
	post := f.seedPost("9")

	body := `{"likes":["9","7"]}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.authedContext(req, rec, 7)
	c.SetParamNames("id")
	c.SetParamValues(post.ID.Hex())

	require.NoError(t, f.handler.LikePost(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	liked, _ := f.repo.GetPostByID(context.Background(), post.ID.Hex())
	assert.Equal(t, []string{"9", "7"}, liked.Likes)
}
