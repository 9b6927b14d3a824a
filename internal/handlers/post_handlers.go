package handlers

import (
	"encoding/json"
	"net/http"

	"lilypad/internal/engine/actors"
	"lilypad/internal/middleware"
	"lilypad/internal/models"

	"github.com/google/uuid"
)

// CreatePostRequest represents a request to create a new post
type CreatePostRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	ImageURLs []string `json:"imageUrls"`
	Tags      []string `json:"tags"`
}

// LikeRequest represents a like toggle on a post or comment
type LikeRequest struct {
	TargetID string `json:"targetId"`
}

// HandlePosts handles post creation, listing and deletion
func (s *Server) HandlePosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		switch r.Method {
		case http.MethodPost:
			// The actor refuses uuid.Nil authors, so an anonymous caller gets
			// a login-required response rather than a silent write.
			userID, _ := middleware.GetUserIDFromContext(r.Context())

			var req CreatePostRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetFeedActor(), &actors.CreatePostMsg{
				Title:     req.Title,
				Content:   req.Content,
				AuthorID:  userID,
				ImageURLs: req.ImageURLs,
				Tags:      req.Tags,
			})
			if err != nil {
				http.Error(w, "Failed to create post", http.StatusInternalServerError)
				return
			}
			s.respondResult(w, result)

		case http.MethodGet:
			if idStr := r.URL.Query().Get("postId"); idStr != "" {
				postID, err := uuid.Parse(idStr)
				if err != nil {
					http.Error(w, "Invalid post ID", http.StatusBadRequest)
					return
				}
				result, err := s.ask(s.Engine.GetFeedActor(), &actors.GetPostMsg{PostID: postID})
				if err != nil {
					http.Error(w, "Failed to get post", http.StatusInternalServerError)
					return
				}
				s.respondResult(w, result)
				return
			}

			result, err := s.ask(s.Engine.GetFeedActor(), &actors.GetAllPostsMsg{})
			if err != nil {
				http.Error(w, "Failed to list posts", http.StatusInternalServerError)
				return
			}
			s.respondResult(w, result)

		case http.MethodDelete:
			userID, _ := middleware.GetUserIDFromContext(r.Context())

			postID, err := uuid.Parse(r.URL.Query().Get("postId"))
			if err != nil {
				http.Error(w, "Invalid post ID", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetFeedActor(), &actors.DeletePostMsg{
				PostID: postID,
				UserID: userID,
			})
			if err != nil {
				http.Error(w, "Failed to delete post", http.StatusInternalServerError)
				return
			}
			s.respondResult(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandlePostLike toggles the caller's like on a post. Anonymous callers get
// 401 with no state touched, which the client turns into a login prompt.
func (s *Server) HandlePostLike() http.HandlerFunc {
	return s.handleLikeToggle(models.PostLike)
}

// HandleCommentLike toggles the caller's like on a comment.
func (s *Server) HandleCommentLike() http.HandlerFunc {
	return s.handleLikeToggle(models.CommentLike)
}

func (s *Server) handleLikeToggle(kind models.LikeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		// uuid.Nil when anonymous; the engagement actor refuses it.
		userID, _ := middleware.GetUserIDFromContext(r.Context())

		var req LikeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		targetID, err := uuid.Parse(req.TargetID)
		if err != nil {
			http.Error(w, "Invalid target ID", http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetEngagementActor(), &actors.ToggleLikeMsg{
			UserID:   userID,
			TargetID: targetID,
			Kind:     kind,
		})
		if err != nil {
			http.Error(w, "Failed to toggle like", http.StatusInternalServerError)
			return
		}
		s.respondResult(w, result)
	}
}
