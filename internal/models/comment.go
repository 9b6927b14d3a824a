package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID             uuid.UUID `json:"id"`
	Content        string    `json:"content"`
	AuthorID       uuid.UUID `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	PostID         uuid.UUID `json:"postId"`
	Likes          int       `json:"likes"`
	CreatedAt      time.Time `json:"createdAt"`
}
