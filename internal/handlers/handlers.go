package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"lilypad/internal/engine"
	"lilypad/internal/media"
	"lilypad/internal/utils"
	"lilypad/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Hub            *websocket.Hub
	Uploader       *media.Uploader // nil when media storage is not configured
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	hub *websocket.Hub,
	uploader *media.Uploader,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		Hub:            hub,
		Uploader:       uploader,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// ask sends a request to an actor and waits for the reply.
func (s *Server) ask(pid *actor.PID, msg interface{}) (interface{}, error) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	return future.Result()
}

func (s *Server) respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// respondResult writes an actor reply, translating AppError responses to
// their HTTP status.
func (s *Server) respondResult(w http.ResponseWriter, result interface{}) {
	if appErr, ok := result.(*utils.AppError); ok {
		if s.Metrics != nil {
			s.Metrics.IncrementErrors()
		}
		http.Error(w, appErr.Message, utils.AppErrorToHTTPStatus(appErr.Code))
		return
	}
	s.respondJSON(w, result)
}
