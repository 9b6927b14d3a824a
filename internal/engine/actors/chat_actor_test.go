package actors

import (
	"context"
	"testing"
	"time"

	"lilypad/internal/database"
	"lilypad/internal/models"
	"lilypad/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func spawnChatActor(t *testing.T) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewChatActor(nil, nil, nil)
	})
	return system, system.Root.Spawn(props)
}

// updateCollector funnels subscription deliveries into a channel the test
// can wait on.
type updateCollector struct {
	updates chan *ConversationUpdate
}

func (c *updateCollector) Receive(context actor.Context) {
	if update, ok := context.Message().(*ConversationUpdate); ok {
		c.updates <- update
	}
}

func spawnCollector(system *actor.ActorSystem) (*actor.PID, chan *ConversationUpdate) {
	updates := make(chan *ConversationUpdate, 16)
	props := actor.PropsFromProducer(func() actor.Actor {
		return &updateCollector{updates: updates}
	})
	return system.Root.Spawn(props), updates
}

func waitForUpdate(t *testing.T, updates chan *ConversationUpdate) *ConversationUpdate {
	t.Helper()
	select {
	case update := <-updates:
		return update
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for conversation update")
		return nil
	}
}

func sendMessage(t *testing.T, system *actor.ActorSystem, pid *actor.PID, from, to uuid.UUID, text string) *models.ChatMessage {
	t.Helper()
	future := system.Root.RequestFuture(pid, &SendChatMessageMsg{
		FromID: from,
		ToID:   to,
		Text:   text,
	}, 5*time.Second)
	result, err := future.Result()
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	message, ok := result.(*models.ChatMessage)
	if !ok {
		t.Fatalf("Expected *models.ChatMessage, got %T", result)
	}
	return message
}

func getConversation(t *testing.T, system *actor.ActorSystem, pid *actor.PID, owner, counterpart uuid.UUID) []*models.ChatMessage {
	t.Helper()
	future := system.Root.RequestFuture(pid, &GetConversationMsg{
		OwnerID:       owner,
		CounterpartID: counterpart,
	}, 5*time.Second)
	result, err := future.Result()
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	return result.([]*models.ChatMessage)
}

func TestChatMessageFanOut(t *testing.T) {
	system, pid := spawnChatActor(t)
	alice := uuid.New()
	bob := uuid.New()

	sent := sendMessage(t, system, pid, alice, bob, "hello bob")

	// Both participants hold a copy with identical content, timestamp and
	// sequence number.
	aliceView := getConversation(t, system, pid, alice, bob)
	bobView := getConversation(t, system, pid, bob, alice)

	assert.Len(t, aliceView, 1)
	assert.Len(t, bobView, 1)
	assert.Equal(t, sent.ID, aliceView[0].ID)
	assert.Equal(t, sent.ID, bobView[0].ID)
	assert.Equal(t, aliceView[0].Text, bobView[0].Text)
	assert.Equal(t, aliceView[0].SentAt, bobView[0].SentAt)
	assert.Equal(t, aliceView[0].Seq, bobView[0].Seq)

	// Replies interleave into one ordered conversation on both sides.
	sendMessage(t, system, pid, bob, alice, "hi alice")
	sendMessage(t, system, pid, alice, bob, "how are you")

	aliceView = getConversation(t, system, pid, alice, bob)
	bobView = getConversation(t, system, pid, bob, alice)
	assert.Len(t, aliceView, 3)
	assert.Len(t, bobView, 3)

	for i := range aliceView {
		assert.Equal(t, aliceView[i].ID, bobView[i].ID)
	}
	for i := 1; i < len(aliceView); i++ {
		assert.Greater(t, aliceView[i].Seq, aliceView[i-1].Seq)
		assert.False(t, aliceView[i].SentAt.Before(aliceView[i-1].SentAt))
	}
}

func TestChatConversationsAreIsolated(t *testing.T) {
	system, pid := spawnChatActor(t)
	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	sendMessage(t, system, pid, alice, bob, "for bob")
	sendMessage(t, system, pid, alice, carol, "for carol")

	bobView := getConversation(t, system, pid, bob, alice)
	carolView := getConversation(t, system, pid, carol, alice)

	assert.Len(t, bobView, 1)
	assert.Equal(t, "for bob", bobView[0].Text)
	assert.Len(t, carolView, 1)
	assert.Equal(t, "for carol", carolView[0].Text)

	// Each pair numbers its own sequence.
	assert.Equal(t, uint64(1), bobView[0].Seq)
	assert.Equal(t, uint64(1), carolView[0].Seq)
}

func TestChatSendRequiresLogin(t *testing.T) {
	system, pid := spawnChatActor(t)

	future := system.Root.RequestFuture(pid, &SendChatMessageMsg{
		FromID: uuid.Nil,
		ToID:   uuid.New(),
		Text:   "anonymous",
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", result)
	}
	assert.Equal(t, utils.ErrUnauthorized, appErr.Code)
}

func TestChatPreviews(t *testing.T) {
	system, pid := spawnChatActor(t)
	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	sendMessage(t, system, pid, alice, bob, "first to bob")
	sendMessage(t, system, pid, alice, carol, "then to carol")
	sendMessage(t, system, pid, bob, alice, "bob replies")

	future := system.Root.RequestFuture(pid, &GetChatPreviewsMsg{OwnerID: alice}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	previews := result.([]*models.ChatPreview)
	assert.Len(t, previews, 2)

	// Newest conversation first; each entry carries the latest message.
	assert.Equal(t, bob, previews[0].CounterpartID)
	assert.Equal(t, "bob replies", previews[0].Text)
	assert.Equal(t, carol, previews[1].CounterpartID)
	assert.Equal(t, "then to carol", previews[1].Text)

	// Bob's side summarizes the same conversation from his viewpoint.
	future = system.Root.RequestFuture(pid, &GetChatPreviewsMsg{OwnerID: bob}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)

	bobPreviews := result.([]*models.ChatPreview)
	assert.Len(t, bobPreviews, 1)
	assert.Equal(t, alice, bobPreviews[0].CounterpartID)
	assert.Equal(t, "bob replies", bobPreviews[0].Text)
}

func TestChatSubscription(t *testing.T) {
	system, pid := spawnChatActor(t)
	alice := uuid.New()
	bob := uuid.New()

	sendMessage(t, system, pid, alice, bob, "before subscribe")

	collector, updates := spawnCollector(system)

	subFuture := system.Root.RequestFuture(pid, &SubscribeConversationMsg{
		OwnerID:       alice,
		CounterpartID: bob,
		Subscriber:    collector,
	}, 5*time.Second)
	subResult, err := subFuture.Result()
	assert.NoError(t, err)

	subscription, ok := subResult.(*ConversationSubscription)
	if !ok {
		t.Fatalf("Expected ConversationSubscription, got %T", subResult)
	}

	// Initial delivery carries the history so far.
	initial := waitForUpdate(t, updates)
	assert.Equal(t, subscription.ID, initial.SubscriptionID)
	assert.Len(t, initial.Messages, 1)
	assert.Equal(t, "before subscribe", initial.Messages[0].Text)

	// Every accepted message republishes the full ordered list, regardless
	// of which side sent it.
	sendMessage(t, system, pid, bob, alice, "after subscribe")
	update := waitForUpdate(t, updates)
	assert.Len(t, update.Messages, 2)
	assert.Equal(t, "after subscribe", update.Messages[1].Text)
	for i := 1; i < len(update.Messages); i++ {
		assert.False(t, update.Messages[i].SentAt.Before(update.Messages[i-1].SentAt))
	}

	// After unsubscribe nothing more is delivered.
	unsubFuture := system.Root.RequestFuture(pid, &UnsubscribeConversationMsg{
		SubscriptionID: subscription.ID,
	}, 5*time.Second)
	unsubResult, err := unsubFuture.Result()
	assert.NoError(t, err)
	assert.True(t, unsubResult.(*models.StatusResponse).Success)

	sendMessage(t, system, pid, alice, bob, "into the void")
	select {
	case update := <-updates:
		t.Fatalf("Unexpected update after unsubscribe: %+v", update)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestChatUnsubscribeUnknownHandle(t *testing.T) {
	system, pid := spawnChatActor(t)

	future := system.Root.RequestFuture(pid, &UnsubscribeConversationMsg{
		SubscriptionID: uuid.New(),
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	assert.Equal(t, utils.ErrNotFound, result.(*utils.AppError).Code)
}

// seededStore is a Store stub carrying conversation history left behind by
// a previous process, for exercising cold-start hydration.
type seededStore struct {
	conversations map[uuid.UUID]map[uuid.UUID][]*models.ChatMessage
}

var _ database.Store = (*seededStore)(nil)

func newSeededStore() *seededStore {
	return &seededStore{conversations: make(map[uuid.UUID]map[uuid.UUID][]*models.ChatMessage)}
}

func (s *seededStore) seed(ownerID, counterpartID uuid.UUID, msgs ...*models.ChatMessage) {
	if _, ok := s.conversations[ownerID]; !ok {
		s.conversations[ownerID] = make(map[uuid.UUID][]*models.ChatMessage)
	}
	s.conversations[ownerID][counterpartID] = append(s.conversations[ownerID][counterpartID], msgs...)
}

func (s *seededStore) SaveUser(ctx context.Context, user *models.User) error { return nil }
func (s *seededStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, utils.NewUserNotFoundError(id.String())
}
func (s *seededStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, utils.NewUserNotFoundError(email)
}
func (s *seededStore) SetUserLike(ctx context.Context, userID, targetID uuid.UUID, kind models.LikeKind, liked bool) error {
	return nil
}
func (s *seededStore) SavePost(ctx context.Context, post *models.Post) error { return nil }
func (s *seededStore) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
}
func (s *seededStore) GetAllPosts(ctx context.Context) ([]*models.Post, error) { return nil, nil }
func (s *seededStore) DeletePost(ctx context.Context, id uuid.UUID) error     { return nil }
func (s *seededStore) AdjustLikeCount(ctx context.Context, targetID uuid.UUID, kind models.LikeKind, delta int) error {
	return nil
}
func (s *seededStore) AdjustCommentCount(ctx context.Context, postID uuid.UUID, delta int) error {
	return nil
}
func (s *seededStore) SaveComment(ctx context.Context, comment *models.Comment) error { return nil }
func (s *seededStore) GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	return nil, nil
}
func (s *seededStore) DeleteComment(ctx context.Context, id uuid.UUID) error { return nil }
func (s *seededStore) SaveChatMessage(ctx context.Context, ownerID, counterpartID uuid.UUID, msg *models.ChatMessage) error {
	s.seed(ownerID, counterpartID, msg)
	return nil
}
func (s *seededStore) GetConversation(ctx context.Context, ownerID, counterpartID uuid.UUID) ([]*models.ChatMessage, error) {
	return s.conversations[ownerID][counterpartID], nil
}
func (s *seededStore) UpsertChatPreview(ctx context.Context, preview *models.ChatPreview) error {
	return nil
}
func (s *seededStore) GetChatPreviews(ctx context.Context, ownerID uuid.UUID) ([]*models.ChatPreview, error) {
	return nil, nil
}

// A fresh actor in front of stored history must continue the pair's
// sequence, not restart it at 1.
func TestChatSequenceContinuesStoredHistory(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	base := time.Now().Add(-time.Hour)
	stored := []*models.ChatMessage{
		{ID: uuid.New(), FromID: alice, ToID: bob, Text: "old one", SentAt: base, Seq: 4},
		{ID: uuid.New(), FromID: bob, ToID: alice, Text: "old two", SentAt: base.Add(time.Minute), Seq: 5},
	}

	store := newSeededStore()
	store.seed(alice, bob, stored...)
	store.seed(bob, alice, stored...)

	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewChatActor(store, nil, nil)
	})
	pid := system.Root.Spawn(props)

	sent := sendMessage(t, system, pid, alice, bob, "fresh")
	assert.Equal(t, uint64(6), sent.Seq)

	aliceView := getConversation(t, system, pid, alice, bob)
	bobView := getConversation(t, system, pid, bob, alice)
	assert.Len(t, aliceView, 3)
	assert.Len(t, bobView, 3)
	for i := 1; i < len(aliceView); i++ {
		assert.Greater(t, aliceView[i].Seq, aliceView[i-1].Seq)
	}
	assert.Equal(t, uint64(6), bobView[2].Seq)
}

func TestChatLoadCounterpartRequiresSubscriber(t *testing.T) {
	system, pid := spawnChatActor(t)

	future := system.Root.RequestFuture(pid, &LoadCounterpartMsg{
		OwnerID:       uuid.New(),
		CounterpartID: uuid.New(),
		Subscriber:    nil,
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", result)
	}
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestChatLoadUnknownCounterpart(t *testing.T) {
	system, pid := spawnChatActor(t)
	collector, updates := spawnCollector(system)

	future := system.Root.RequestFuture(pid, &LoadCounterpartMsg{
		OwnerID:       uuid.New(),
		CounterpartID: uuid.New(),
		Subscriber:    collector,
	}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", result)
	}
	assert.Equal(t, utils.ErrUserNotFound, appErr.Code)

	// The failed lookup must not have opened a subscription.
	select {
	case update := <-updates:
		t.Fatalf("Unexpected update for unknown counterpart: %+v", update)
	case <-time.After(200 * time.Millisecond):
	}
}
