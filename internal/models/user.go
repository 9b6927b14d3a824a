package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID   `json:"id" bson:"-"`
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	HashedPassword  string      `json:"-"`
	ProfileImageURL string      `json:"profileImageUrl"`
	LikedPosts      []uuid.UUID `json:"likedPosts"`
	LikedComments   []uuid.UUID `json:"likedComments"`
	CreatedAt       time.Time   `json:"createdAt"`
	LastActive      time.Time   `json:"lastActive"`
}
