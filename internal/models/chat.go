package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one direct message between two users. A message is written
// twice, once under each participant's copy of the conversation; both copies
// carry the same ID, timestamp and sequence number.
type ChatMessage struct {
	ID       uuid.UUID `json:"id"`
	FromID   uuid.UUID `json:"fromId"`
	ToID     uuid.UUID `json:"toId"`
	Text     string    `json:"text"`
	IsImage  bool      `json:"isImage"`
	ImageURL string    `json:"imageUrl,omitempty"`
	SentAt   time.Time `json:"sentAt"`
	// Seq breaks ties between messages sent within the same timestamp
	// resolution. Monotonic per conversation pair.
	Seq uint64 `json:"seq"`
}

// ChatPreview is the denormalized latest-message summary for one side of a
// conversation, keyed by (owner, counterpart). It is overwritten on every new
// message between the pair and drives the conversation list without scanning
// full history.
type ChatPreview struct {
	OwnerID         uuid.UUID `json:"ownerId"`
	CounterpartID   uuid.UUID `json:"counterpartId"`
	FromID          uuid.UUID `json:"fromId"`
	ToID            uuid.UUID `json:"toId"`
	Username        string    `json:"username"`
	ProfileImageURL string    `json:"profileImageUrl"`
	Text            string    `json:"text"`
	IsImage         bool      `json:"isImage"`
	SentAt          time.Time `json:"sentAt"`
}
