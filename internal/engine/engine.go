package engine

import (
	"lilypad/internal/database"
	"lilypad/internal/engine/actors"
	"lilypad/internal/utils"
	"lilypad/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine spawns the domain actors and hands out their PIDs.
type Engine struct {
	userActor       *actor.PID
	feedActor       *actor.PID
	engagementActor *actor.PID
	chatActor       *actor.PID
}

func NewEngine(system *actor.ActorSystem, db database.Store, hub *websocket.Hub, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserActor(db, metrics)
	})
	userPID := context.Spawn(userProps)

	feedProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewFeedActor(db, metrics)
	})
	feedPID := context.Spawn(feedProps)

	// The engagement actor mutates counters owned by the feed actor, so it
	// needs the feed PID at spawn time.
	engagementProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewEngagementActor(feedPID, db, metrics)
	})
	engagementPID := context.Spawn(engagementProps)

	chatProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewChatActor(db, hub, metrics)
	})
	chatPID := context.Spawn(chatProps)

	return &Engine{
		userActor:       userPID,
		feedActor:       feedPID,
		engagementActor: engagementPID,
		chatActor:       chatPID,
	}
}

func (e *Engine) GetUserActor() *actor.PID {
	return e.userActor
}

func (e *Engine) GetFeedActor() *actor.PID {
	return e.feedActor
}

func (e *Engine) GetEngagementActor() *actor.PID {
	return e.engagementActor
}

func (e *Engine) GetChatActor() *actor.PID {
	return e.chatActor
}
