package handlers

import (
	"encoding/json"
	"net/http"

	"lilypad/internal/engine/actors"
	"lilypad/internal/middleware"

	"github.com/google/uuid"
)

// RegisterUserRequest represents a request to create a new account
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	Username        string `json:"username"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// HandleUserRegister handles account creation
func (s *Server) HandleUserRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetUserActor(), &actors.RegisterUserMsg{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			http.Error(w, "Failed to register user", http.StatusInternalServerError)
			return
		}

		s.respondResult(w, result)
	}
}

// HandleUserLogin handles login requests
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetUserActor(), &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		s.respondResult(w, result)
	}
}

// HandleUserProfile reads or updates a profile. GET accepts ?userId= for any
// profile and defaults to the authenticated user; PUT updates the
// authenticated user's own profile.
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		switch r.Method {
		case http.MethodGet:
			var userID uuid.UUID
			if idStr := r.URL.Query().Get("userId"); idStr != "" {
				parsed, err := uuid.Parse(idStr)
				if err != nil {
					http.Error(w, "Invalid user ID", http.StatusBadRequest)
					return
				}
				userID = parsed
			} else if ctxID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
				userID = ctxID
			} else {
				http.Error(w, "User ID required", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetUserActor(), &actors.GetUserProfileMsg{UserID: userID})
			if err != nil {
				http.Error(w, "Failed to get profile", http.StatusInternalServerError)
				return
			}
			s.respondResult(w, result)

		case http.MethodPut:
			userID, ok := middleware.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			var req UpdateProfileRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetUserActor(), &actors.UpdateProfileMsg{
				UserID:          userID,
				NewUsername:     req.Username,
				ProfileImageURL: req.ProfileImageURL,
			})
			if err != nil {
				http.Error(w, "Failed to update profile", http.StatusInternalServerError)
				return
			}
			s.respondResult(w, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
