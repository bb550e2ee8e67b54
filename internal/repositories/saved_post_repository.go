package repositories

import (
	"errors"

	"github.com/snapgram-app/backend/internal/models"
	"gorm.io/gorm"
)

// SavedPostRepository defines the interface for saved post operations.
// Unsave works on the saved record's own id, not the (user, post) pair.
type SavedPostRepository interface {
	SavePost(savedPost *models.SavedPost) error
	UnsavePost(savedRecordID uint) error
	GetSavedRecord(userID uint, postID string) (*models.SavedPost, error)
	GetSavedPostsByUser(userID uint) ([]models.SavedPost, error)
	GetSavedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresSavedPostRepository implements SavedPostRepository
type PostgresSavedPostRepository struct {
	db *gorm.DB
}

func NewPostgresSavedPostRepository(db *gorm.DB) *PostgresSavedPostRepository {
	return &PostgresSavedPostRepository{db: db}
}

func (r *PostgresSavedPostRepository) SavePost(savedPost *models.SavedPost) error {
	return r.db.Create(savedPost).Error
}

func (r *PostgresSavedPostRepository) UnsavePost(savedRecordID uint) error {
	res := r.db.Delete(&models.SavedPost{}, savedRecordID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetSavedRecord finds the user's saved record for a post, if any.
func (r *PostgresSavedPostRepository) GetSavedRecord(userID uint, postID string) (*models.SavedPost, error) {
	var saved models.SavedPost
	err := r.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&saved).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &saved, nil
}

func (r *PostgresSavedPostRepository) GetSavedPostsByUser(userID uint) ([]models.SavedPost, error) {
	var saved []models.SavedPost
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&saved).Error
	return saved, err
}

func (r *PostgresSavedPostRepository) GetSavedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var saved []models.SavedPost
	err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&saved).Error
	if err != nil {
		return nil, err
	}
	for _, s := range saved {
		result[s.PostID] = true
	}
	return result, nil
}
