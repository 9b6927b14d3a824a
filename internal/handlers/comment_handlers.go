package handlers

import (
	"encoding/json"
	"net/http"

	"lilypad/internal/engine/actors"
	"lilypad/internal/middleware"

	"github.com/google/uuid"
)

// CreateCommentRequest represents a request to comment on a post
type CreateCommentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

// HandleComments handles comment creation, listing and deletion
func (s *Server) HandleComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		switch r.Method {
		case http.MethodPost:
			userID, _ := middleware.GetUserIDFromContext(r.Context())

			var req CreateCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			postID, err := uuid.Parse(req.PostID)
			if err != nil {
				http.Error(w, "Invalid post ID", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetFeedActor(), &actors.CreateCommentMsg{
				Content:  req.Content,
				AuthorID: userID,
				PostID:   postID,
			})
			if err != nil {
				http.Error(w, "Failed to create comment", http.StatusInternalServerError)
				return
			}
			s.respondResult(w, result)

		case http.MethodGet:
			postID, err := uuid.Parse(r.URL.Query().Get("postId"))
			if err != nil {
				http.Error(w, "Invalid post ID", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetFeedActor(), &actors.GetPostCommentsMsg{PostID: postID})
			if err != nil {
				http.Error(w, "Failed to get comments", http.StatusInternalServerError)
				return
			}
			s.respondResult(w, result)

		case http.MethodDelete:
			userID, _ := middleware.GetUserIDFromContext(r.Context())

			commentID, err := uuid.Parse(r.URL.Query().Get("commentId"))
			if err != nil {
				http.Error(w, "Invalid comment ID", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetFeedActor(), &actors.DeleteCommentMsg{
				CommentID: commentID,
				UserID:    userID,
			})
			if err != nil {
				http.Error(w, "Failed to delete comment", http.StatusInternalServerError)
				return
			}
			s.respondResult(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
