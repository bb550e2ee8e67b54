package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a user submission stored in MongoDB. ImageID and ImageURL
// are set and cleared together: the URL is always derived from the ID.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Creator   string             `json:"creator" bson:"creator"`
	Caption   string             `json:"caption" bson:"caption"`
	Location  string             `json:"location" bson:"location"`
	Tags      []string           `json:"tags" bson:"tags"`
	ImageURL  string             `json:"image_url" bson:"image_url"`
	ImageID   string             `json:"image_id" bson:"image_id"`
	Likes     []string           `json:"likes" bson:"likes"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest carries the multipart form fields for creating a post.
// The media file itself is read from the form separately.
type CreatePostRequest struct {
	Caption  string `form:"caption" validate:"required,min=2,max=2200"`
	Location string `form:"location" validate:"required,min=2,max=100"`
	Tags     string `form:"tags"`
}

// UpdatePostRequest carries the multipart form fields for editing a post.
// The replacement media file is optional.
type UpdatePostRequest struct {
	Caption  string `form:"caption" validate:"required,min=2,max=2200"`
	Location string `form:"location" validate:"required,min=2,max=100"`
	Tags     string `form:"tags"`
}

// LikePostRequest replaces the post's likes array wholesale. The client
// computes the toggled set; the server does not merge.
type LikePostRequest struct {
	Likes []string `json:"likes"`
}

// FeedPage is one page of the infinite feed with the cursor for the next call.
type FeedPage struct {
	Posts      []Post `json:"posts"`
	NextCursor string `json:"next_cursor,omitempty"`
}
