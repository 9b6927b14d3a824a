package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	AuthorID       uuid.UUID `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	ImageURLs      []string  `json:"imageUrls"`
	Tags           []string  `json:"tags"`
	Likes          int       `json:"likes"`
	CommentCount   int       `json:"commentCount"`
	CreatedAt      time.Time `json:"createdAt"`
}
