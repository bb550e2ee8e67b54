package services

import (
	"context"

	"github.com/snapgram-app/backend/internal/models"
	"github.com/snapgram-app/backend/internal/repositories"
	"github.com/snapgram-app/backend/internal/storage"
	"github.com/snapgram-app/backend/pkg/logger"
	"github.com/snapgram-app/backend/pkg/metrics"
	"go.uber.org/zap"
)

// ProfileService applies profile edits, reusing the post lifecycle's media
// staging for avatar replacement: upload and preview first, write the user
// row, and only then delete the old avatar.
type ProfileService struct {
	users repositories.UserRepository
	files storage.FileStore
}

func NewProfileService(users repositories.UserRepository, files storage.FileStore) *ProfileService {
	return &ProfileService{users: users, files: files}
}

// UpdateProfile edits name and bio, optionally replacing the avatar with the
// same compensation semantics as UpdatePost.
func (s *ProfileService) UpdateProfile(ctx context.Context, user *models.User, name, bio string, avatar *MediaFile) (*models.User, error) {
	oldImageURL, oldImageID := user.ImageURL, user.ImageID
	newImageID := ""
	if avatar != nil {
		fileID, previewURL, err := stageMedia(ctx, s.files, *avatar)
		if err != nil {
			return nil, err
		}
		newImageID = fileID
		user.ImageURL = previewURL
		user.ImageID = fileID
	}

	user.Name = name
	user.Bio = bio

	if err := s.users.UpdateUser(user); err != nil {
		if avatar != nil {
			compensate(ctx, s.files, newImageID, "profile")
			user.ImageURL, user.ImageID = oldImageURL, oldImageID
		}
		return nil, &PersistError{Err: err}
	}

	if avatar != nil && oldImageID != "" {
		if err := s.files.Delete(ctx, oldImageID); err != nil {
			metrics.OrphanedFiles.Inc()
			logger.Log.Warn("old avatar cleanup failed after update",
				zap.Uint("user_id", user.ID),
				zap.String("file_id", oldImageID),
				zap.Error(err))
		}
	}
	return user, nil
}
