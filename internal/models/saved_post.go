package models

import "time"

// SavedPost is the join record linking a user to a bookmarked post. There is
// deliberately no uniqueness constraint on (user, post); unsave deletes by
// the record's own id.
type SavedPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	PostID    string    `json:"post_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
