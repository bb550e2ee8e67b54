package services

import (
	"context"
	"errors"
	"io"

	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/repositories"
	"github.com/snapgram-app/backend/internal/storage"
	"github.com/snapgram-app/backend/pkg/logger"
	"github.com/snapgram-app/backend/pkg/metrics"
	"go.uber.org/zap"
)

// Preview rendition policy. Fixed, not caller-configurable.
const (
	previewWidth   = 2000
	previewHeight  = 2000
	previewAnchor  = "top"
	previewQuality = 100
)

const (
	feedPageSize     = 3
	recentPostsLimit = 20
)

// MediaFile is one uploaded media file from the request.
type MediaFile struct {
	Name   string
	Reader io.Reader
}

// UpdatePostInput carries everything UpdatePost needs. ImageURL/ImageID are
// the post's current values; Replacement, when set, supersedes them.
type UpdatePostInput struct {
	PostID      string
	Caption     string
	Location    string
	TagsText    string
	ImageURL    string
	ImageID     string
	Replacement *MediaFile
}

// PostLifecycle coordinates the document store and the file store for posts
// with attached media, so the two stay consistent despite independent failure
// modes. Every failure after a successful upload triggers a compensating file
// deletion; the document write is always the last, atomic step.
type PostLifecycle struct {
	posts repositories.PostRepository
	saved repositories.SavedPostRepository
	files storage.FileStore
}

// NewPostLifecycle wires the manager with its collaborators.
func NewPostLifecycle(posts repositories.PostRepository, saved repositories.SavedPostRepository, files storage.FileStore) *PostLifecycle {
	return &PostLifecycle{posts: posts, saved: saved, files: files}
}

func previewOptions() storage.PreviewOptions {
	return storage.PreviewOptions{
		Width:   previewWidth,
		Height:  previewHeight,
		Anchor:  previewAnchor,
		Quality: previewQuality,
	}
}

// stageMedia uploads the file and derives its preview URL. On a failed
// derivation the just-uploaded file is deleted before returning, so no
// orphan is left behind.
func stageMedia(ctx context.Context, files storage.FileStore, media MediaFile) (fileID, previewURL string, err error) {
	fileID, err = files.Upload(ctx, media.Name, media.Reader)
	if err != nil {
		return "", "", &UploadError{Err: err}
	}
	metrics.Uploads.Inc()

	previewURL, err = files.PreviewURL(fileID, previewOptions())
	if err != nil {
		compensate(ctx, files, fileID, "preview")
		return "", "", &PreviewError{Err: err}
	}
	return fileID, previewURL, nil
}

// compensate deletes a file uploaded earlier in the same operation after a
// later step failed. A failed compensation leaves an orphan, which is counted
// and logged but cannot change the error already being returned.
func compensate(ctx context.Context, files storage.FileStore, fileID, stage string) {
	metrics.Compensations.WithLabelValues(stage).Inc()
	if err := files.Delete(ctx, fileID); err != nil {
		metrics.OrphanedFiles.Inc()
		logger.Log.Error("compensating file delete failed, file orphaned",
			zap.String("file_id", fileID),
			zap.String("stage", stage),
			zap.Error(err))
	}
}

// CreatePost uploads the mandatory media file, derives its preview URL and
// creates the post document. On success exactly one new file and one new
// document exist, referencing each other; on any failure neither exists.
func (s *PostLifecycle) CreatePost(ctx context.Context, creatorID, caption, location, tagsText string, media MediaFile) (*models.Post, error) {
	fileID, previewURL, err := stageMedia(ctx, s.files, media)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Creator:  creatorID,
		Caption:  caption,
		Location: location,
		Tags:     NormalizeTags(tagsText),
		ImageURL: previewURL,
		ImageID:  fileID,
		Likes:    []string{},
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		compensate(ctx, s.files, fileID, "create")
		return nil, &PersistError{Err: err}
	}

	metrics.PostsCreated.Inc()
	return post, nil
}

// UpdatePost edits caption, location and tags, optionally replacing the
// attached media. With a replacement, the old file is deleted only after the
// document durably points at the new one; if the document update fails the
// new file is deleted and the old file and document remain valid.
func (s *PostLifecycle) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	imageURL, imageID := in.ImageURL, in.ImageID
	oldImageID := ""

	if in.Replacement != nil {
		fileID, previewURL, err := stageMedia(ctx, s.files, *in.Replacement)
		if err != nil {
			return nil, err
		}
		oldImageID = in.ImageID
		imageURL, imageID = previewURL, fileID
	}

	post := &models.Post{
		Caption:  in.Caption,
		Location: in.Location,
		Tags:     NormalizeTags(in.TagsText),
		ImageURL: imageURL,
		ImageID:  imageID,
	}
	if err := s.posts.UpdatePost(ctx, in.PostID, post); err != nil {
		if in.Replacement != nil {
			compensate(ctx, s.files, imageID, "update")
		}
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, &PersistError{Err: err}
	}

	// Document now references the new file; the old one is unreferenced and
	// its removal is best-effort.
	if oldImageID != "" {
		if err := s.files.Delete(ctx, oldImageID); err != nil {
			metrics.OrphanedFiles.Inc()
			logger.Log.Warn("old media cleanup failed after update",
				zap.String("post_id", in.PostID),
				zap.String("file_id", oldImageID),
				zap.Error(err))
		}
	}

	return s.posts.GetPostByID(ctx, in.PostID)
}

// DeletePost removes the document first, then its media. Document deletion is
// the authoritative, user-visible state change; a failed file deletion leaves
// a dangling file and is logged, not surfaced. Missing ids are a no-op.
func (s *PostLifecycle) DeletePost(ctx context.Context, postID, imageID string) error {
	if postID == "" || imageID == "" {
		return nil
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return &PersistError{Err: err}
	}
	metrics.PostsDeleted.Inc()

	if err := s.files.Delete(ctx, imageID); err != nil {
		metrics.OrphanedFiles.Inc()
		logger.Log.Warn("post media cleanup failed, file left dangling",
			zap.String("post_id", postID),
			zap.String("file_id", imageID),
			zap.Error(err))
	}
	return nil
}

// LikePost replaces the post's likes array with the caller-computed set.
// Last writer wins: two clients toggling concurrently from the same starting
// set can lose one of the likes. Known limitation, kept deliberately.
func (s *PostLifecycle) LikePost(ctx context.Context, postID string, likers []string) (*models.Post, error) {
	if err := s.posts.UpdateLikes(ctx, postID, likers); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, &PersistError{Err: err}
	}
	return s.posts.GetPostByID(ctx, postID)
}

// SavePost bookmarks a post for a user. No secondary resource, so no
// compensation; duplicates are possible by design (no uniqueness constraint).
func (s *PostLifecycle) SavePost(userID uint, postID string) (*models.SavedPost, error) {
	saved := &models.SavedPost{UserID: userID, PostID: postID}
	if err := s.saved.SavePost(saved); err != nil {
		return nil, &PersistError{Err: err}
	}
	return saved, nil
}

// UnsavePost deletes a saved record by its own id.
func (s *PostLifecycle) UnsavePost(savedRecordID uint) error {
	if err := s.saved.UnsavePost(savedRecordID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return &PersistError{Err: err}
	}
	return nil
}

// GetPost fetches one post by id.
func (s *PostLifecycle) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.posts.GetPostByID(ctx, postID)
}

// ListFeed returns one page of the infinite feed, newest updates first. The
// returned cursor is the last post's id; passing it back yields the next
// page, stable under inserts at the head of the feed.
func (s *PostLifecycle) ListFeed(ctx context.Context, cursor string) (*models.FeedPage, error) {
	posts, err := s.posts.GetFeedPage(ctx, cursor, feedPageSize)
	if err != nil {
		return nil, err
	}

	page := &models.FeedPage{Posts: posts}
	if len(posts) == feedPageSize {
		page.NextCursor = posts[len(posts)-1].ID.Hex()
	}
	return page, nil
}

// RecentPosts returns the newest posts by creation time for the home feed.
func (s *PostLifecycle) RecentPosts(ctx context.Context) ([]models.Post, error) {
	return s.posts.GetRecentPosts(ctx, recentPostsLimit)
}

// SearchPosts matches the term against captions only. Store order, no
// pagination.
func (s *PostLifecycle) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	return s.posts.SearchPosts(ctx, term)
}

// UserPosts returns a user's posts, newest first.
func (s *PostLifecycle) UserPosts(ctx context.Context, creatorID string) ([]models.Post, error) {
	return s.posts.GetPostsByCreator(ctx, creatorID)
}
