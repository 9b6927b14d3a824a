// internal/database/user_repository.go
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

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID              string    `bson:"_id"`
	Username        string    `bson:"username"`
	Email           string    `bson:"email"`
	HashedPassword  string    `bson:"hashedPassword"`
	ProfileImageURL string    `bson:"profileImageUrl"`
	LikedPosts      []string  `bson:"likedPosts"`
	LikedComments   []string  `bson:"likedComments"`
	CreatedAt       time.Time `bson:"createdAt"`
	LastActive      time.Time `bson:"lastActive"`
}

func userToDocument(user *models.User) *UserDocument {
	doc := &UserDocument{
		ID:              user.ID.String(),
		Username:        user.Username,
		Email:           user.Email,
		HashedPassword:  user.HashedPassword,
		ProfileImageURL: user.ProfileImageURL,
		LikedPosts:      make([]string, len(user.LikedPosts)),
		LikedComments:   make([]string, len(user.LikedComments)),
		CreatedAt:       user.CreatedAt,
		LastActive:      user.LastActive,
	}
	for i, id := range user.LikedPosts {
		doc.LikedPosts[i] = id.String()
	}
	for i, id := range user.LikedComments {
		doc.LikedComments[i] = id.String()
	}
	return doc
}

func documentToUser(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	user := &models.User{
		ID:              id,
		Username:        doc.Username,
		Email:           doc.Email,
		HashedPassword:  doc.HashedPassword,
		ProfileImageURL: doc.ProfileImageURL,
		LikedPosts:      make([]uuid.UUID, 0, len(doc.LikedPosts)),
		LikedComments:   make([]uuid.UUID, 0, len(doc.LikedComments)),
		CreatedAt:       doc.CreatedAt,
		LastActive:      doc.LastActive,
	}
	for _, idStr := range doc.LikedPosts {
		likedID, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		user.LikedPosts = append(user.LikedPosts, likedID)
	}
	for _, idStr := range doc.LikedComments {
		likedID, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		user.LikedComments = append(user.LikedComments, likedID)
	}
	return user, nil
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := userToDocument(user)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": user.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToUser(&doc)
}

// GetUserByEmail retrieves a user from MongoDB by their email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToUser(&doc)
}

// SetUserLike adds or removes a target from the user's liked set. Membership
// lives on the user document; the target's counter is adjusted by a separate,
// independent write (AdjustLikeCount).
func (m *MongoDB) SetUserLike(ctx context.Context, userID, targetID uuid.UUID, kind models.LikeKind, liked bool) error {
	field := "likedPosts"
	if kind == models.CommentLike {
		field = "likedComments"
	}

	var update bson.M
	if liked {
		update = bson.M{"$addToSet": bson.M{field: targetID.String()}}
	} else {
		update = bson.M{"$pull": bson.M{field: targetID.String()}}
	}

	result, err := m.Users.UpdateOne(ctx, bson.M{"_id": userID.String()}, update)
	if err != nil {
		return utils.WrapDatabaseError("set user like", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(userID.String())
	}
	return nil
}
