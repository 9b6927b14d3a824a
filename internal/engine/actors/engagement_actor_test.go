package actors

import (
	"testing"
	"time"

	"lilypad/internal/models"
	"lilypad/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// spawnEngagementPair spawns a feed actor and an engagement actor wired to
// it, and creates one post to toggle against.
func spawnEngagementPair(t *testing.T) (*actor.ActorSystem, *actor.PID, *models.Post) {
	t.Helper()
	system := actor.NewActorSystem()

	feedProps := actor.PropsFromProducer(func() actor.Actor {
		return NewFeedActor(nil, nil)
	})
	feedPID := system.Root.Spawn(feedProps)

	engagementProps := actor.PropsFromProducer(func() actor.Actor {
		return NewEngagementActor(feedPID, nil, nil)
	})
	engagementPID := system.Root.Spawn(engagementProps)

	postFuture := system.Root.RequestFuture(feedPID, &CreatePostMsg{
		Title:    "Toggle target",
		Content:  "like me",
		AuthorID: uuid.New(),
	}, 5*time.Second)
	postResult, err := postFuture.Result()
	if err != nil {
		t.Fatalf("Post creation failed: %v", err)
	}

	return system, engagementPID, postResult.(*models.Post)
}

func TestLikeToggleRoundTrip(t *testing.T) {
	system, pid, post := spawnEngagementPair(t)
	userID := uuid.New()

	// First toggle likes the post
	future := system.Root.RequestFuture(pid, &ToggleLikeMsg{
		UserID:   userID,
		TargetID: post.ID,
		Kind:     models.PostLike,
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	status, ok := result.(*models.LikeStatus)
	if !ok {
		t.Fatalf("Expected LikeStatus, got %T", result)
	}
	assert.True(t, status.Liked)
	assert.Equal(t, 1, status.Likes)

	// Second toggle returns both membership and counter to the start
	future = system.Root.RequestFuture(pid, &ToggleLikeMsg{
		UserID:   userID,
		TargetID: post.ID,
		Kind:     models.PostLike,
	}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)

	status = result.(*models.LikeStatus)
	assert.False(t, status.Liked)
	assert.Equal(t, 0, status.Likes)

	likedFuture := system.Root.RequestFuture(pid, &GetLikedTargetsMsg{
		UserID: userID,
		Kind:   models.PostLike,
	}, 5*time.Second)
	likedResult, err := likedFuture.Result()
	assert.NoError(t, err)
	assert.Empty(t, likedResult.([]uuid.UUID))
}

func TestLikeToggleIndependentUsers(t *testing.T) {
	system, pid, post := spawnEngagementPair(t)
	alice := uuid.New()
	bob := uuid.New()

	for _, userID := range []uuid.UUID{alice, bob} {
		future := system.Root.RequestFuture(pid, &ToggleLikeMsg{
			UserID:   userID,
			TargetID: post.ID,
			Kind:     models.PostLike,
		}, 5*time.Second)
		result, err := future.Result()
		assert.NoError(t, err)
		assert.True(t, result.(*models.LikeStatus).Liked)
	}

	// Alice unliking leaves Bob's like on the counter
	future := system.Root.RequestFuture(pid, &ToggleLikeMsg{
		UserID:   alice,
		TargetID: post.ID,
		Kind:     models.PostLike,
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	status := result.(*models.LikeStatus)
	assert.False(t, status.Liked)
	assert.Equal(t, 1, status.Likes)

	bobLiked := system.Root.RequestFuture(pid, &GetLikedTargetsMsg{
		UserID: bob,
		Kind:   models.PostLike,
	}, 5*time.Second)
	bobResult, err := bobLiked.Result()
	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{post.ID}, bobResult.([]uuid.UUID))
}

func TestLikeToggleRequiresLogin(t *testing.T) {
	system, pid, post := spawnEngagementPair(t)

	future := system.Root.RequestFuture(pid, &ToggleLikeMsg{
		UserID:   uuid.Nil,
		TargetID: post.ID,
		Kind:     models.PostLike,
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", result)
	}
	assert.Equal(t, utils.ErrUnauthorized, appErr.Code)

	// The refused toggle must not have touched the counter
	check := system.Root.RequestFuture(pid, &ToggleLikeMsg{
		UserID:   uuid.New(),
		TargetID: post.ID,
		Kind:     models.PostLike,
	}, 5*time.Second)
	checkResult, err := check.Result()
	assert.NoError(t, err)
	assert.Equal(t, 1, checkResult.(*models.LikeStatus).Likes)
}

func TestLikeToggleMissingTarget(t *testing.T) {
	system, pid, _ := spawnEngagementPair(t)
	userID := uuid.New()
	missing := uuid.New()

	future := system.Root.RequestFuture(pid, &ToggleLikeMsg{
		UserID:   userID,
		TargetID: missing,
		Kind:     models.PostLike,
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	assert.Equal(t, utils.ErrNotFound, result.(*utils.AppError).Code)

	// The aborted toggle left no membership behind
	likedFuture := system.Root.RequestFuture(pid, &GetLikedTargetsMsg{
		UserID: userID,
		Kind:   models.PostLike,
	}, 5*time.Second)
	likedResult, err := likedFuture.Result()
	assert.NoError(t, err)
	assert.Empty(t, likedResult.([]uuid.UUID))
}

func TestLikeToggleCommentKind(t *testing.T) {
	system := actor.NewActorSystem()

	feedProps := actor.PropsFromProducer(func() actor.Actor {
		return NewFeedActor(nil, nil)
	})
	feedPID := system.Root.Spawn(feedProps)

	engagementProps := actor.PropsFromProducer(func() actor.Actor {
		return NewEngagementActor(feedPID, nil, nil)
	})
	engagementPID := system.Root.Spawn(engagementProps)

	authorID := uuid.New()
	postFuture := system.Root.RequestFuture(feedPID, &CreatePostMsg{
		Title:    "Host post",
		Content:  "body",
		AuthorID: authorID,
	}, 5*time.Second)
	postResult, err := postFuture.Result()
	assert.NoError(t, err)
	post := postResult.(*models.Post)

	commentFuture := system.Root.RequestFuture(feedPID, &CreateCommentMsg{
		Content:  "likeable comment",
		AuthorID: authorID,
		PostID:   post.ID,
	}, 5*time.Second)
	commentResult, err := commentFuture.Result()
	assert.NoError(t, err)
	comment := commentResult.(*models.Comment)

	future := system.Root.RequestFuture(engagementPID, &ToggleLikeMsg{
		UserID:   uuid.New(),
		TargetID: comment.ID,
		Kind:     models.CommentLike,
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	status := result.(*models.LikeStatus)
	assert.True(t, status.Liked)
	assert.Equal(t, 1, status.Likes)
}
