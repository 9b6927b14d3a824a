// internal/database/comment_repository.go
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

// CommentDocument represents the MongoDB schema for a comment.
type CommentDocument struct {
	ID             string    `bson:"_id"`
	Content        string    `bson:"content"`
	AuthorID       string    `bson:"authorId"`
	AuthorUsername string    `bson:"authorUsername"`
	PostID         string    `bson:"postId"`
	Likes          int       `bson:"likes"`
	CreatedAt      time.Time `bson:"createdAt"`
}

func commentToDocument(comment *models.Comment) *CommentDocument {
	return &CommentDocument{
		ID:             comment.ID.String(),
		Content:        comment.Content,
		AuthorID:       comment.AuthorID.String(),
		AuthorUsername: comment.AuthorUsername,
		PostID:         comment.PostID.String(),
		Likes:          comment.Likes,
		CreatedAt:      comment.CreatedAt,
	}
}

func documentToComment(doc *CommentDocument) (*models.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID: %v", err)
	}
	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %v", err)
	}
	postID, err := uuid.Parse(doc.PostID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	return &models.Comment{
		ID:             id,
		Content:        doc.Content,
		AuthorID:       authorID,
		AuthorUsername: doc.AuthorUsername,
		PostID:         postID,
		Likes:          doc.Likes,
		CreatedAt:      doc.CreatedAt,
	}, nil
}

// SaveComment creates or updates a comment in MongoDB.
func (m *MongoDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	doc := commentToDocument(comment)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": comment.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Comments.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetPostComments retrieves all comments for a post, oldest first. One-shot
// read: callers re-invoke to refresh.
func (m *MongoDB) GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := m.Comments.Find(ctx, bson.M{"postId": postID.String()}, opts)
	if err != nil {
		return nil, utils.WrapDatabaseError("get post comments", err)
	}
	defer cursor.Close(ctx)

	comments := make([]*models.Comment, 0)
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.WrapDatabaseError("decode comment", err)
		}
		comment, err := documentToComment(&doc)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	return comments, nil
}

// DeleteComment removes a single comment document.
func (m *MongoDB) DeleteComment(ctx context.Context, id uuid.UUID) error {
	result, err := m.Comments.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return utils.WrapDatabaseError("delete comment", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}
	return nil
}
