// internal/database/database.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"lilypad/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the persistence surface the actors write through. All operations
// are independent remote calls; there is no transaction spanning two of them.
// Actors accept a nil Store and then run memory-only (used in tests).
type Store interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetUserLike(ctx context.Context, userID, targetID uuid.UUID, kind models.LikeKind, liked bool) error

	SavePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]*models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
	AdjustLikeCount(ctx context.Context, targetID uuid.UUID, kind models.LikeKind, delta int) error
	AdjustCommentCount(ctx context.Context, postID uuid.UUID, delta int) error

	SaveComment(ctx context.Context, comment *models.Comment) error
	GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error

	SaveChatMessage(ctx context.Context, ownerID, counterpartID uuid.UUID, msg *models.ChatMessage) error
	GetConversation(ctx context.Context, ownerID, counterpartID uuid.UUID) ([]*models.ChatMessage, error)
	UpsertChatPreview(ctx context.Context, preview *models.ChatPreview) error
	GetChatPreviews(ctx context.Context, ownerID uuid.UUID) ([]*models.ChatPreview, error)
}

type MongoDB struct {
	Client         *mongo.Client
	Users          *mongo.Collection
	Posts          *mongo.Collection
	Comments       *mongo.Collection
	Messages       *mongo.Collection
	LatestMessages *mongo.Collection
}

var _ Store = (*MongoDB)(nil)

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	log.Println("Successfully connected to MongoDB!")

	db := client.Database(dbName)
	return &MongoDB{
		Client:         client,
		Users:          db.Collection("users"),
		Posts:          db.Collection("posts"),
		Comments:       db.Collection("comments"),
		Messages:       db.Collection("messages"),
		LatestMessages: db.Collection("latestMessages"),
	}, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
