package actors

import (
	stdctx "context"
	"log"
	"time"

	"lilypad/internal/database"
	"lilypad/internal/models"
	"lilypad/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for EngagementActor
type (
	// ToggleLikeMsg flips the actor's like on a post or comment. UserID ==
	// uuid.Nil means the caller is not logged in; the toggle is refused
	// before any state changes.
	ToggleLikeMsg struct {
		UserID   uuid.UUID       `json:"userId"`
		TargetID uuid.UUID       `json:"targetId"`
		Kind     models.LikeKind `json:"kind"`
	}

	GetLikedTargetsMsg struct {
		UserID uuid.UUID       `json:"userId"`
		Kind   models.LikeKind `json:"kind"`
	}
)

// EngagementActor maintains each user's liked-set and drives the paired
// counter on the target entity. Membership and counter are two records: the
// membership write lands on the user document, the counter write on the
// content document, issued independently with no transaction between them.
// Routing every toggle through this one actor serializes the in-memory state,
// so repeated toggles converge even when a store write is lost.
type EngagementActor struct {
	likedPosts    map[uuid.UUID]map[uuid.UUID]bool
	likedComments map[uuid.UUID]map[uuid.UUID]bool
	loaded        map[uuid.UUID]bool

	feedPID *actor.PID
	db      database.Store
	metrics *utils.MetricsCollector
}

func NewEngagementActor(feedPID *actor.PID, db database.Store, metrics *utils.MetricsCollector) actor.Actor {
	return &EngagementActor{
		likedPosts:    make(map[uuid.UUID]map[uuid.UUID]bool),
		likedComments: make(map[uuid.UUID]map[uuid.UUID]bool),
		loaded:        make(map[uuid.UUID]bool),
		feedPID:       feedPID,
		db:            db,
		metrics:       metrics,
	}
}

func (a *EngagementActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("EngagementActor started with PID: %v", context.Self())

	case *ToggleLikeMsg:
		a.handleToggleLike(context, msg)

	case *GetLikedTargetsMsg:
		a.handleGetLikedTargets(context, msg)

	default:
		log.Printf("EngagementActor: Unknown message type %T", msg)
	}
}

func (a *EngagementActor) handleToggleLike(context actor.Context, msg *ToggleLikeMsg) {
	startTime := time.Now()

	// Refuse unauthenticated actors before any mutation, local or remote.
	if msg.UserID == uuid.Nil {
		context.Respond(utils.NewLoginRequiredError("like content"))
		return
	}
	if msg.Kind != models.PostLike && msg.Kind != models.CommentLike {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Unknown like target kind", nil))
		return
	}

	a.ensureLoaded(msg.UserID)

	memberships := a.membershipsFor(msg.UserID, msg.Kind)
	liked := !memberships[msg.TargetID]

	delta := 1
	if !liked {
		delta = -1
	}

	// Adjust the target's counter first; a missing target aborts the toggle
	// with no membership change.
	future := context.RequestFuture(a.feedPID, &AdjustLikesMsg{
		TargetID: msg.TargetID,
		Kind:     msg.Kind,
		Delta:    delta,
	}, 5*time.Second)

	result, err := future.Result()
	if err != nil {
		context.Respond(utils.NewActorTimeoutError("feed"))
		return
	}
	if appErr, ok := result.(*utils.AppError); ok {
		context.Respond(appErr)
		return
	}
	likes := result.(int)

	// Optimistic local flip.
	if liked {
		memberships[msg.TargetID] = true
	} else {
		delete(memberships, msg.TargetID)
	}

	// Two independent remote writes: membership on the user document, counter
	// on the content document. Each failure is logged and swallowed; the next
	// successful toggle self-heals a half-applied pair.
	if a.db != nil {
		ctx := stdctx.Background()
		if err := a.db.SetUserLike(ctx, msg.UserID, msg.TargetID, msg.Kind, liked); err != nil {
			log.Printf("EngagementActor: Failed to persist liked-set for user %s: %v", msg.UserID, err)
		}
		if err := a.db.AdjustLikeCount(ctx, msg.TargetID, msg.Kind, delta); err != nil {
			log.Printf("EngagementActor: Failed to persist like count for %s %s: %v", msg.Kind, msg.TargetID, err)
		}
	}

	if a.metrics != nil {
		a.metrics.AddOperationLatency("toggle_like", time.Since(startTime))
	}
	context.Respond(&models.LikeStatus{Liked: liked, Likes: likes})
}

func (a *EngagementActor) handleGetLikedTargets(context actor.Context, msg *GetLikedTargetsMsg) {
	a.ensureLoaded(msg.UserID)

	memberships := a.membershipsFor(msg.UserID, msg.Kind)
	targets := make([]uuid.UUID, 0, len(memberships))
	for targetID := range memberships {
		targets = append(targets, targetID)
	}
	context.Respond(targets)
}

func (a *EngagementActor) membershipsFor(userID uuid.UUID, kind models.LikeKind) map[uuid.UUID]bool {
	byUser := a.likedPosts
	if kind == models.CommentLike {
		byUser = a.likedComments
	}
	if _, ok := byUser[userID]; !ok {
		byUser[userID] = make(map[uuid.UUID]bool)
	}
	return byUser[userID]
}

// ensureLoaded pulls the user's liked sets from the store once, so toggles
// survive a process restart without drifting.
func (a *EngagementActor) ensureLoaded(userID uuid.UUID) {
	if a.db == nil || a.loaded[userID] {
		return
	}
	a.loaded[userID] = true

	user, err := a.db.GetUser(stdctx.Background(), userID)
	if err != nil {
		if !utils.IsErrorCode(err, utils.ErrUserNotFound) {
			log.Printf("EngagementActor: Failed to load liked sets for user %s: %v", userID, err)
		}
		return
	}

	posts := a.membershipsFor(userID, models.PostLike)
	for _, targetID := range user.LikedPosts {
		posts[targetID] = true
	}
	comments := a.membershipsFor(userID, models.CommentLike)
	for _, targetID := range user.LikedComments {
		comments[targetID] = true
	}
}
