package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name"`
	Username    string `json:"username" gorm:"index"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	Bio         string `json:"bio"`
	ImageURL    string `json:"image_url"`
	ImageID     string `json:"image_id"`
	Password    string `json:"-"`
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
}

// UserCompact is the author projection embedded in feed responses.
type UserCompact struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		ImageURL: u.ImageURL,
	}
}

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateProfileRequest carries the multipart form fields for profile edits.
// A replacement avatar file is optional.
type UpdateProfileRequest struct {
	Name string `form:"name" validate:"required,min=2,max=50"`
	Bio  string `form:"bio" validate:"max=2200"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
