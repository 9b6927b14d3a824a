// internal/database/post_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"lilypad/internal/models"
	"lilypad/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostDocument represents the MongoDB schema for a post.
type PostDocument struct {
	ID             string    `bson:"_id"`
	Title          string    `bson:"title"`
	Content        string    `bson:"content"`
	AuthorID       string    `bson:"authorId"`
	AuthorUsername string    `bson:"authorUsername"`
	ImageURLs      []string  `bson:"imageUrls"`
	Tags           []string  `bson:"tags"`
	Likes          int       `bson:"likes"`
	CommentCount   int       `bson:"commentCount"`
	CreatedAt      time.Time `bson:"createdAt"`
}

func postToDocument(post *models.Post) *PostDocument {
	return &PostDocument{
		ID:             post.ID.String(),
		Title:          post.Title,
		Content:        post.Content,
		AuthorID:       post.AuthorID.String(),
		AuthorUsername: post.AuthorUsername,
		ImageURLs:      post.ImageURLs,
		Tags:           post.Tags,
		Likes:          post.Likes,
		CommentCount:   post.CommentCount,
		CreatedAt:      post.CreatedAt,
	}
}

func documentToPost(doc *PostDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %v", err)
	}

	return &models.Post{
		ID:             id,
		Title:          doc.Title,
		Content:        doc.Content,
		AuthorID:       authorID,
		AuthorUsername: doc.AuthorUsername,
		ImageURLs:      doc.ImageURLs,
		Tags:           doc.Tags,
		Likes:          doc.Likes,
		CommentCount:   doc.CommentCount,
		CreatedAt:      doc.CreatedAt,
	}, nil
}

// SavePost creates or updates a post in MongoDB.
func (m *MongoDB) SavePost(ctx context.Context, post *models.Post) error {
	doc := postToDocument(post)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": post.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Posts.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetPost retrieves a post by its ID.
func (m *MongoDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument

	err := m.Posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToPost(&doc)
}

// GetAllPosts retrieves all posts, newest first.
func (m *MongoDB) GetAllPosts(ctx context.Context) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.Posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, utils.WrapDatabaseError("get all posts", err)
	}
	defer cursor.Close(ctx)

	var posts []*models.Post
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.WrapDatabaseError("decode post", err)
		}
		post, err := documentToPost(&doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// DeletePost removes a post document. Comments on the post are left in place:
// deletion does not cascade.
func (m *MongoDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := m.Posts.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return utils.WrapDatabaseError("delete post", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	return nil
}

// AdjustLikeCount increments or decrements the like counter on a post or
// comment. Paired with SetUserLike but issued as its own write.
func (m *MongoDB) AdjustLikeCount(ctx context.Context, targetID uuid.UUID, kind models.LikeKind, delta int) error {
	collection := m.Posts
	if kind == models.CommentLike {
		collection = m.Comments
	}

	update := bson.M{"$inc": bson.M{"likes": delta}}
	result, err := collection.UpdateOne(ctx, bson.M{"_id": targetID.String()}, update)
	if err != nil {
		return utils.WrapDatabaseError("adjust like count", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Like target not found", nil)
	}
	return nil
}

// AdjustCommentCount shifts a post's denormalized comment counter.
func (m *MongoDB) AdjustCommentCount(ctx context.Context, postID uuid.UUID, delta int) error {
	update := bson.M{"$inc": bson.M{"commentCount": delta}}
	result, err := m.Posts.UpdateOne(ctx, bson.M{"_id": postID.String()}, update)
	if err != nil {
		return utils.WrapDatabaseError("adjust comment count", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	return nil
}
