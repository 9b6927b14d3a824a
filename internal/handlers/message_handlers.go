package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"lilypad/internal/engine/actors"
	"lilypad/internal/middleware"

	"github.com/google/uuid"
)

// maxImageUploadBytes caps image message uploads at 10 MB.
const maxImageUploadBytes = 10 << 20

// SendMessageRequest represents a request to send a direct message
type SendMessageRequest struct {
	ToID string `json:"toId"`
	Text string `json:"text"`
}

// HandleMessages handles sending messages and reading conversations
func (s *Server) HandleMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		switch r.Method {
		case http.MethodPost:
			// uuid.Nil when anonymous; the chat actor refuses it.
			userID, _ := middleware.GetUserIDFromContext(r.Context())

			var req SendMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			toID, err := uuid.Parse(req.ToID)
			if err != nil {
				http.Error(w, "Invalid recipient ID", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetChatActor(), &actors.SendChatMessageMsg{
				FromID: userID,
				ToID:   toID,
				Text:   req.Text,
			})
			if err != nil {
				http.Error(w, "Failed to send message", http.StatusInternalServerError)
				return
			}
			s.respondResult(w, result)

		case http.MethodGet:
			userID, ok := middleware.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			otherID, err := uuid.Parse(r.URL.Query().Get("otherUserId"))
			if err != nil {
				http.Error(w, "Invalid user ID", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetChatActor(), &actors.GetConversationMsg{
				OwnerID:       userID,
				CounterpartID: otherID,
			})
			if err != nil {
				http.Error(w, "Failed to get conversation", http.StatusInternalServerError)
				return
			}
			s.respondResult(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleChatPreviews returns the caller's conversation list, newest first.
func (s *Server) HandleChatPreviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		result, err := s.ask(s.Engine.GetChatActor(), &actors.GetChatPreviewsMsg{OwnerID: userID})
		if err != nil {
			http.Error(w, "Failed to get previews", http.StatusInternalServerError)
			return
		}
		s.respondResult(w, result)
	}
}

// HandleImageMessage accepts a multipart image upload, stores it, and sends
// it as an image-flagged chat message referencing the stored URL.
func (s *Server) HandleImageMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		if s.Uploader == nil {
			http.Error(w, "Media storage not configured", http.StatusServiceUnavailable)
			return
		}

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		// Multipart parsing caches the whole body, so the cap has to be
		// installed before anything touches the form.
		r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
		if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
			http.Error(w, "Invalid or oversized form", http.StatusBadRequest)
			return
		}

		toID, err := uuid.Parse(r.FormValue("toId"))
		if err != nil {
			http.Error(w, "Invalid recipient ID", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "Missing image file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "Failed to read image", http.StatusBadRequest)
			return
		}

		contentType := header.Header.Get("Content-Type")
		url, err := s.Uploader.Upload(r.Context(), data, contentType)
		if err != nil {
			log.Printf("Image upload failed: %v", err)
			http.Error(w, "Failed to store image", http.StatusInternalServerError)
			return
		}

		result, err := s.ask(s.Engine.GetChatActor(), &actors.SendChatMessageMsg{
			FromID:   userID,
			ToID:     toID,
			IsImage:  true,
			ImageURL: url,
		})
		if err != nil {
			http.Error(w, "Failed to send message", http.StatusInternalServerError)
			return
		}
		s.respondResult(w, result)
	}
}
