// internal/database/message_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"lilypad/internal/models"
	"lilypad/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatMessageDocument is one owner's copy of a direct message. Each logical
// message exists twice, once per participant, addressed by
// (ownerId, counterpartId). The two inserts are independent writes.
type ChatMessageDocument struct {
	ID            string    `bson:"_id"`
	OwnerID       string    `bson:"ownerId"`
	CounterpartID string    `bson:"counterpartId"`
	MessageID     string    `bson:"messageId"`
	FromID        string    `bson:"fromId"`
	ToID          string    `bson:"toId"`
	Text          string    `bson:"text"`
	IsImage       bool      `bson:"isImage"`
	ImageURL      string    `bson:"imageUrl"`
	SentAt        time.Time `bson:"sentAt"`
	Seq           uint64    `bson:"seq"`
}

// ChatPreviewDocument is the denormalized latest-message summary for one
// conversation, one per (owner, counterpart) pair. Overwritten on every send.
type ChatPreviewDocument struct {
	ID              string    `bson:"_id"`
	OwnerID         string    `bson:"ownerId"`
	CounterpartID   string    `bson:"counterpartId"`
	FromID          string    `bson:"fromId"`
	ToID            string    `bson:"toId"`
	Username        string    `bson:"username"`
	ProfileImageURL string    `bson:"profileImageUrl"`
	Text            string    `bson:"text"`
	IsImage         bool      `bson:"isImage"`
	SentAt          time.Time `bson:"sentAt"`
}

func documentToChatMessage(doc *ChatMessageDocument) (*models.ChatMessage, error) {
	id, err := uuid.Parse(doc.MessageID)
	if err != nil {
		return nil, fmt.Errorf("invalid message ID: %v", err)
	}
	fromID, err := uuid.Parse(doc.FromID)
	if err != nil {
		return nil, fmt.Errorf("invalid sender ID: %v", err)
	}
	toID, err := uuid.Parse(doc.ToID)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient ID: %v", err)
	}

	return &models.ChatMessage{
		ID:       id,
		FromID:   fromID,
		ToID:     toID,
		Text:     doc.Text,
		IsImage:  doc.IsImage,
		ImageURL: doc.ImageURL,
		SentAt:   doc.SentAt,
		Seq:      doc.Seq,
	}, nil
}

// SaveChatMessage inserts one owner's copy of a message. The document key
// combines owner and message so the sender's and recipient's copies never
// collide.
func (m *MongoDB) SaveChatMessage(ctx context.Context, ownerID, counterpartID uuid.UUID, msg *models.ChatMessage) error {
	doc := ChatMessageDocument{
		ID:            ownerID.String() + ":" + msg.ID.String(),
		OwnerID:       ownerID.String(),
		CounterpartID: counterpartID.String(),
		MessageID:     msg.ID.String(),
		FromID:        msg.FromID.String(),
		ToID:          msg.ToID.String(),
		Text:          msg.Text,
		IsImage:       msg.IsImage,
		ImageURL:      msg.ImageURL,
		SentAt:        msg.SentAt,
		Seq:           msg.Seq,
	}

	_, err := m.Messages.InsertOne(ctx, doc)
	if err != nil {
		return utils.WrapDatabaseError("save chat message", err)
	}
	return nil
}

// GetConversation returns the owner's copy of a conversation ordered by
// (sentAt, seq) ascending.
func (m *MongoDB) GetConversation(ctx context.Context, ownerID, counterpartID uuid.UUID) ([]*models.ChatMessage, error) {
	filter := bson.M{
		"ownerId":       ownerID.String(),
		"counterpartId": counterpartID.String(),
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "sentAt", Value: 1},
		{Key: "seq", Value: 1},
	})

	cursor, err := m.Messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, utils.WrapDatabaseError("get conversation", err)
	}
	defer cursor.Close(ctx)

	messages := make([]*models.ChatMessage, 0)
	for cursor.Next(ctx) {
		var doc ChatMessageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.WrapDatabaseError("decode chat message", err)
		}
		msg, err := documentToChatMessage(&doc)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// UpsertChatPreview overwrites the latest-message summary for one side of a
// conversation.
func (m *MongoDB) UpsertChatPreview(ctx context.Context, preview *models.ChatPreview) error {
	docID := preview.OwnerID.String() + ":" + preview.CounterpartID.String()
	doc := ChatPreviewDocument{
		ID:              docID,
		OwnerID:         preview.OwnerID.String(),
		CounterpartID:   preview.CounterpartID.String(),
		FromID:          preview.FromID.String(),
		ToID:            preview.ToID.String(),
		Username:        preview.Username,
		ProfileImageURL: preview.ProfileImageURL,
		Text:            preview.Text,
		IsImage:         preview.IsImage,
		SentAt:          preview.SentAt,
	}

	opts := options.Update().SetUpsert(true)
	_, err := m.LatestMessages.UpdateOne(ctx, bson.M{"_id": docID}, bson.M{"$set": doc}, opts)
	if err != nil {
		return utils.WrapDatabaseError("upsert chat preview", err)
	}
	return nil
}

// GetChatPreviews returns a user's conversation list, newest activity first.
func (m *MongoDB) GetChatPreviews(ctx context.Context, ownerID uuid.UUID) ([]*models.ChatPreview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sentAt", Value: -1}})
	cursor, err := m.LatestMessages.Find(ctx, bson.M{"ownerId": ownerID.String()}, opts)
	if err != nil {
		return nil, utils.WrapDatabaseError("get chat previews", err)
	}
	defer cursor.Close(ctx)

	previews := make([]*models.ChatPreview, 0)
	for cursor.Next(ctx) {
		var doc ChatPreviewDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.WrapDatabaseError("decode chat preview", err)
		}

		ownerID, err := uuid.Parse(doc.OwnerID)
		if err != nil {
			continue
		}
		counterpartID, err := uuid.Parse(doc.CounterpartID)
		if err != nil {
			continue
		}
		fromID, _ := uuid.Parse(doc.FromID)
		toID, _ := uuid.Parse(doc.ToID)

		previews = append(previews, &models.ChatPreview{
			OwnerID:         ownerID,
			CounterpartID:   counterpartID,
			FromID:          fromID,
			ToID:            toID,
			Username:        doc.Username,
			ProfileImageURL: doc.ProfileImageURL,
			Text:            doc.Text,
			IsImage:         doc.IsImage,
			SentAt:          doc.SentAt,
		})
	}

	return previews, nil
}
