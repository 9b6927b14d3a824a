package actors

import (
	stdctx "context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"lilypad/internal/database"
	"lilypad/internal/models"
	"lilypad/internal/utils"
	"lilypad/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for ChatActor
type (
	// SendChatMessageMsg creates one logical message and fans it out into
	// both participants' copies of the conversation. Fire-and-forget at the
	// store: persistence failures are logged, never returned.
	SendChatMessageMsg struct {
		FromID   uuid.UUID `json:"fromId"`
		ToID     uuid.UUID `json:"toId"`
		Text     string    `json:"text"`
		IsImage  bool      `json:"isImage"`
		ImageURL string    `json:"imageUrl,omitempty"`
	}

	// SubscribeConversationMsg opens a live subscription on the owner's copy
	// of the pair's conversation. The subscriber receives a
	// ConversationUpdate with the full ordered list immediately and again on
	// every accepted message.
	SubscribeConversationMsg struct {
		OwnerID       uuid.UUID
		CounterpartID uuid.UUID
		Subscriber    *actor.PID
	}

	// UnsubscribeConversationMsg cancels a subscription; the handle comes
	// from the SubscribeConversationMsg response. Without an explicit cancel
	// the subscription keeps delivering to a dead observer.
	UnsubscribeConversationMsg struct {
		SubscriptionID uuid.UUID
	}

	GetConversationMsg struct {
		OwnerID       uuid.UUID
		CounterpartID uuid.UUID
	}

	GetChatPreviewsMsg struct {
		OwnerID uuid.UUID
	}

	// LoadCounterpartMsg is the read-then-subscribe sequence used when a
	// conversation view opens: fetch the counterpart profile, and only on
	// success open the message subscription.
	LoadCounterpartMsg struct {
		OwnerID       uuid.UUID
		CounterpartID uuid.UUID
		Subscriber    *actor.PID
	}
)

// ConversationSubscription is the cancellation handle returned by a
// successful subscribe.
type ConversationSubscription struct {
	ID uuid.UUID `json:"subscriptionId"`
}

// ConversationUpdate carries the full ordered message list for one
// subscription. Ordering is ascending (sentAt, seq).
type ConversationUpdate struct {
	SubscriptionID uuid.UUID             `json:"subscriptionId"`
	OwnerID        uuid.UUID             `json:"ownerId"`
	CounterpartID  uuid.UUID             `json:"counterpartId"`
	Messages       []*models.ChatMessage `json:"messages"`
}

// CounterpartConversation is the LoadCounterpartMsg response: the resolved
// profile plus an already-open subscription.
type CounterpartConversation struct {
	Counterpart    *models.User          `json:"counterpart"`
	SubscriptionID uuid.UUID             `json:"subscriptionId"`
	Messages       []*models.ChatMessage `json:"messages"`
}

// chatEvent is the payload pushed to the recipient's live connections.
type chatEvent struct {
	Type    string              `json:"type"`
	Message *models.ChatMessage `json:"message"`
}

type conversationSub struct {
	id            uuid.UUID
	ownerID       uuid.UUID
	counterpartID uuid.UUID
	subscriber    *actor.PID
}

type pairKey struct {
	a, b uuid.UUID
}

// normalizedPair gives the same key for either ordering of the two users.
func normalizedPair(x, y uuid.UUID) pairKey {
	if x.String() < y.String() {
		return pairKey{a: x, b: y}
	}
	return pairKey{a: y, b: x}
}

// ChatActor owns direct-message state: each participant's ordered copy of
// every conversation, the denormalized latest-message previews, and the live
// subscriptions. Writes go through to the store independently per copy.
type ChatActor struct {
	conversations map[uuid.UUID]map[uuid.UUID][]*models.ChatMessage
	previews      map[uuid.UUID]map[uuid.UUID]*models.ChatPreview
	hydrated      map[uuid.UUID]map[uuid.UUID]bool
	previewsFresh map[uuid.UUID]bool
	seqs          map[pairKey]uint64
	subs          map[uuid.UUID]*conversationSub
	userCache     map[uuid.UUID]*models.User

	db      database.Store
	hub     *websocket.Hub
	metrics *utils.MetricsCollector
}

func NewChatActor(db database.Store, hub *websocket.Hub, metrics *utils.MetricsCollector) actor.Actor {
	return &ChatActor{
		conversations: make(map[uuid.UUID]map[uuid.UUID][]*models.ChatMessage),
		previews:      make(map[uuid.UUID]map[uuid.UUID]*models.ChatPreview),
		hydrated:      make(map[uuid.UUID]map[uuid.UUID]bool),
		previewsFresh: make(map[uuid.UUID]bool),
		seqs:          make(map[pairKey]uint64),
		subs:          make(map[uuid.UUID]*conversationSub),
		userCache:     make(map[uuid.UUID]*models.User),
		db:            db,
		hub:           hub,
		metrics:       metrics,
	}
}

func (a *ChatActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("ChatActor started with PID: %v", context.Self())

	case *SendChatMessageMsg:
		a.handleSend(context, msg)

	case *SubscribeConversationMsg:
		a.handleSubscribe(context, msg)

	case *UnsubscribeConversationMsg:
		a.handleUnsubscribe(context, msg)

	case *GetConversationMsg:
		a.handleGetConversation(context, msg)

	case *GetChatPreviewsMsg:
		a.handleGetPreviews(context, msg)

	case *LoadCounterpartMsg:
		a.handleLoadCounterpart(context, msg)

	default:
		log.Printf("ChatActor: Unknown message type %T", msg)
	}
}

func (a *ChatActor) handleSend(context actor.Context, msg *SendChatMessageMsg) {
	startTime := time.Now()

	if msg.FromID == uuid.Nil {
		context.Respond(utils.NewLoginRequiredError("send messages"))
		return
	}
	if msg.ToID == uuid.Nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Recipient required", nil))
		return
	}

	ctx := stdctx.Background()

	// Hydrate both copies before numbering, so the pair's sequence continues
	// the stored history instead of restarting at 1 after a cold start.
	a.conversation(ctx, msg.FromID, msg.ToID)
	a.conversation(ctx, msg.ToID, msg.FromID)

	pair := normalizedPair(msg.FromID, msg.ToID)
	a.seqs[pair]++

	newMessage := &models.ChatMessage{
		ID:       uuid.New(),
		FromID:   msg.FromID,
		ToID:     msg.ToID,
		Text:     msg.Text,
		IsImage:  msg.IsImage,
		ImageURL: msg.ImageURL,
		SentAt:   time.Now(),
		Seq:      a.seqs[pair],
	}

	// Append to both participants' copies.
	a.appendMessage(ctx, msg.FromID, msg.ToID, newMessage)
	a.appendMessage(ctx, msg.ToID, msg.FromID, newMessage)

	// Two independent copy writes. Failure of one must not block the other;
	// both copies carry identical content, timestamp and seq.
	if a.db != nil {
		if err := a.db.SaveChatMessage(ctx, msg.FromID, msg.ToID, newMessage); err != nil {
			log.Printf("ChatActor: Failed to persist sender copy of message %s: %v", newMessage.ID, err)
		}
		if err := a.db.SaveChatMessage(ctx, msg.ToID, msg.FromID, newMessage); err != nil {
			log.Printf("ChatActor: Failed to persist recipient copy of message %s: %v", newMessage.ID, err)
		}
	}

	// Overwrite both sides' latest-message previews, again independently.
	a.persistPreview(ctx, msg.FromID, msg.ToID, newMessage)
	a.persistPreview(ctx, msg.ToID, msg.FromID, newMessage)

	// Republish the full ordered list to every live subscription on either
	// side of the pair.
	a.notifySubscribers(context, msg.FromID, msg.ToID)

	// Push the new message to the recipient's live connections.
	if a.hub != nil {
		if payload, err := json.Marshal(&chatEvent{Type: "chat.message", Message: newMessage}); err == nil {
			a.hub.SendToUser(msg.ToID, payload)
		}
	}

	if a.metrics != nil {
		a.metrics.AddOperationLatency("send_message", time.Since(startTime))
	}
	context.Respond(newMessage)
}

func (a *ChatActor) handleSubscribe(context actor.Context, msg *SubscribeConversationMsg) {
	if msg.Subscriber == nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Subscriber required", nil))
		return
	}

	sub := &conversationSub{
		id:            uuid.New(),
		ownerID:       msg.OwnerID,
		counterpartID: msg.CounterpartID,
		subscriber:    msg.Subscriber,
	}
	a.subs[sub.id] = sub

	// Initial delivery: the full ordered list as of now.
	ctx := stdctx.Background()
	messages := a.conversation(ctx, msg.OwnerID, msg.CounterpartID)
	context.Send(sub.subscriber, &ConversationUpdate{
		SubscriptionID: sub.id,
		OwnerID:        sub.ownerID,
		CounterpartID:  sub.counterpartID,
		Messages:       snapshotMessages(messages),
	})

	context.Respond(&ConversationSubscription{ID: sub.id})
}

func (a *ChatActor) handleUnsubscribe(context actor.Context, msg *UnsubscribeConversationMsg) {
	if _, exists := a.subs[msg.SubscriptionID]; !exists {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Subscription not found", nil))
		return
	}
	delete(a.subs, msg.SubscriptionID)
	context.Respond(&models.StatusResponse{Success: true, Message: "Unsubscribed"})
}

func (a *ChatActor) handleGetConversation(context actor.Context, msg *GetConversationMsg) {
	ctx := stdctx.Background()
	messages := a.conversation(ctx, msg.OwnerID, msg.CounterpartID)
	context.Respond(snapshotMessages(messages))
}

func (a *ChatActor) handleGetPreviews(context actor.Context, msg *GetChatPreviewsMsg) {
	ctx := stdctx.Background()
	a.hydratePreviews(ctx, msg.OwnerID)

	previews := make([]*models.ChatPreview, 0, len(a.previews[msg.OwnerID]))
	for _, preview := range a.previews[msg.OwnerID] {
		previews = append(previews, preview)
	}
	sort.Slice(previews, func(i, j int) bool {
		return previews[i].SentAt.After(previews[j].SentAt)
	})

	context.Respond(previews)
}

func (a *ChatActor) handleLoadCounterpart(context actor.Context, msg *LoadCounterpartMsg) {
	if msg.Subscriber == nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Subscriber required", nil))
		return
	}

	counterpart := a.lookupUser(stdctx.Background(), msg.CounterpartID)
	if counterpart == nil {
		// Missing profile is a valid "no data" state: clear and do not
		// subscribe.
		context.Respond(utils.NewUserNotFoundError(msg.CounterpartID.String()))
		return
	}

	sub := &conversationSub{
		id:            uuid.New(),
		ownerID:       msg.OwnerID,
		counterpartID: msg.CounterpartID,
		subscriber:    msg.Subscriber,
	}
	a.subs[sub.id] = sub

	messages := a.conversation(stdctx.Background(), msg.OwnerID, msg.CounterpartID)
	context.Respond(&CounterpartConversation{
		Counterpart:    counterpart,
		SubscriptionID: sub.id,
		Messages:       snapshotMessages(messages),
	})
}

// conversation returns the owner's ordered copy, hydrating it from the store
// on first access.
func (a *ChatActor) conversation(ctx stdctx.Context, ownerID, counterpartID uuid.UUID) []*models.ChatMessage {
	if _, ok := a.conversations[ownerID]; !ok {
		a.conversations[ownerID] = make(map[uuid.UUID][]*models.ChatMessage)
		a.hydrated[ownerID] = make(map[uuid.UUID]bool)
	}

	if a.db != nil && !a.hydrated[ownerID][counterpartID] {
		stored, err := a.db.GetConversation(ctx, ownerID, counterpartID)
		if err != nil {
			log.Printf("ChatActor: Failed to load conversation %s/%s: %v", ownerID, counterpartID, err)
		} else if len(a.conversations[ownerID][counterpartID]) == 0 {
			a.conversations[ownerID][counterpartID] = stored
			// Continue the stored sequence so new sends keep ordering.
			if n := len(stored); n > 0 {
				pair := normalizedPair(ownerID, counterpartID)
				if stored[n-1].Seq > a.seqs[pair] {
					a.seqs[pair] = stored[n-1].Seq
				}
			}
		}
		a.hydrated[ownerID][counterpartID] = true
	}

	return a.conversations[ownerID][counterpartID]
}

func (a *ChatActor) appendMessage(ctx stdctx.Context, ownerID, counterpartID uuid.UUID, msg *models.ChatMessage) {
	existing := a.conversation(ctx, ownerID, counterpartID)
	a.conversations[ownerID][counterpartID] = append(existing, msg)
}

// persistPreview rebuilds one side's latest-message summary and writes it
// through. The preview names the owner's counterpart, not the sender.
func (a *ChatActor) persistPreview(ctx stdctx.Context, ownerID, counterpartID uuid.UUID, msg *models.ChatMessage) {
	preview := &models.ChatPreview{
		OwnerID:       ownerID,
		CounterpartID: counterpartID,
		FromID:        msg.FromID,
		ToID:          msg.ToID,
		Text:          msg.Text,
		IsImage:       msg.IsImage,
		SentAt:        msg.SentAt,
	}
	if counterpart := a.lookupUser(ctx, counterpartID); counterpart != nil {
		preview.Username = counterpart.Username
		preview.ProfileImageURL = counterpart.ProfileImageURL
	}

	if _, ok := a.previews[ownerID]; !ok {
		a.previews[ownerID] = make(map[uuid.UUID]*models.ChatPreview)
	}
	a.previews[ownerID][counterpartID] = preview

	if a.db != nil {
		if err := a.db.UpsertChatPreview(ctx, preview); err != nil {
			log.Printf("ChatActor: Failed to persist preview for %s/%s: %v", ownerID, counterpartID, err)
		}
	}
}

func (a *ChatActor) hydratePreviews(ctx stdctx.Context, ownerID uuid.UUID) {
	if a.db == nil || a.previewsFresh[ownerID] {
		return
	}
	stored, err := a.db.GetChatPreviews(ctx, ownerID)
	if err != nil {
		log.Printf("ChatActor: Failed to load previews for %s: %v", ownerID, err)
		return
	}
	if _, ok := a.previews[ownerID]; !ok {
		a.previews[ownerID] = make(map[uuid.UUID]*models.ChatPreview)
	}
	for _, preview := range stored {
		if existing, ok := a.previews[ownerID][preview.CounterpartID]; ok && existing.SentAt.After(preview.SentAt) {
			continue
		}
		a.previews[ownerID][preview.CounterpartID] = preview
	}
	a.previewsFresh[ownerID] = true
}

func (a *ChatActor) notifySubscribers(context actor.Context, fromID, toID uuid.UUID) {
	for _, sub := range a.subs {
		matches := (sub.ownerID == fromID && sub.counterpartID == toID) ||
			(sub.ownerID == toID && sub.counterpartID == fromID)
		if !matches {
			continue
		}
		messages := a.conversations[sub.ownerID][sub.counterpartID]
		context.Send(sub.subscriber, &ConversationUpdate{
			SubscriptionID: sub.id,
			OwnerID:        sub.ownerID,
			CounterpartID:  sub.counterpartID,
			Messages:       snapshotMessages(messages),
		})
	}
}

func (a *ChatActor) lookupUser(ctx stdctx.Context, userID uuid.UUID) *models.User {
	if user, ok := a.userCache[userID]; ok {
		return user
	}
	if a.db == nil {
		return nil
	}
	user, err := a.db.GetUser(ctx, userID)
	if err != nil {
		if !utils.IsErrorCode(err, utils.ErrUserNotFound) {
			log.Printf("ChatActor: Failed to fetch user %s: %v", userID, err)
		}
		return nil
	}
	a.userCache[userID] = user
	return user
}

// snapshotMessages copies the slice so subscribers never alias actor state.
func snapshotMessages(messages []*models.ChatMessage) []*models.ChatMessage {
	out := make([]*models.ChatMessage, len(messages))
	copy(out, messages)
	return out
}
