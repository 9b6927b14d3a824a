package actors

import (
	stdctx "context"
	"log"
	"strings"
	"time"

	"lilypad/internal/api"
	"lilypad/internal/database"
	"lilypad/internal/middleware"
	"lilypad/internal/models"
	"lilypad/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Message types for UserActor
type (
	RegisterUserMsg struct {
		Username string
		Email    string
		Password string
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	GetUserProfileMsg struct {
		UserID uuid.UUID
	}

	UpdateProfileMsg struct {
		UserID          uuid.UUID
		NewUsername     string
		ProfileImageURL string
	}
)

// UserActor manages accounts: registration, login and profile reads.
type UserActor struct {
	usersByID map[uuid.UUID]*models.User
	emailToID map[string]uuid.UUID

	db      database.Store
	metrics *utils.MetricsCollector
}

func NewUserActor(db database.Store, metrics *utils.MetricsCollector) actor.Actor {
	return &UserActor{
		usersByID: make(map[uuid.UUID]*models.User),
		emailToID: make(map[string]uuid.UUID),
		db:        db,
		metrics:   metrics,
	}
}

func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("UserActor started with PID: %v", context.Self())

	case *RegisterUserMsg:
		a.handleRegister(context, msg)

	case *LoginMsg:
		a.handleLogin(context, msg)

	case *GetUserProfileMsg:
		a.handleGetProfile(context, msg)

	case *UpdateProfileMsg:
		a.handleUpdateProfile(context, msg)

	default:
		log.Printf("UserActor: Unknown message type %T", msg)
	}
}

func (a *UserActor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	startTime := time.Now()

	email := strings.ToLower(strings.TrimSpace(msg.Email))
	if msg.Username == "" || email == "" || msg.Password == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Username, email and password are required", nil))
		return
	}

	if a.findByEmail(email) != nil {
		context.Respond(utils.NewAppError(utils.ErrDuplicate, "Email already registered", nil))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(msg.Password), bcrypt.DefaultCost)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Failed to hash password", err))
		return
	}

	now := time.Now()
	newUser := &models.User{
		ID:             uuid.New(),
		Username:       msg.Username,
		Email:          email,
		HashedPassword: string(hashed),
		LikedPosts:     make([]uuid.UUID, 0),
		LikedComments:  make([]uuid.UUID, 0),
		CreatedAt:      now,
		LastActive:     now,
	}

	a.usersByID[newUser.ID] = newUser
	a.emailToID[email] = newUser.ID

	if a.db != nil {
		if err := a.db.SaveUser(stdctx.Background(), newUser); err != nil {
			log.Printf("UserActor: Failed to persist user %s: %v", newUser.ID, err)
		}
	}

	if a.metrics != nil {
		a.metrics.AddOperationLatency("register_user", time.Since(startTime))
	}
	context.Respond(newUser)
}

func (a *UserActor) handleLogin(context actor.Context, msg *LoginMsg) {
	email := strings.ToLower(strings.TrimSpace(msg.Email))

	user := a.findByEmail(email)
	if user == nil {
		context.Respond(&api.LoginResponse{Success: false, Error: "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		context.Respond(&api.LoginResponse{Success: false, Error: "Invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(user.ID)
	if err != nil {
		log.Printf("UserActor: Failed to generate token for user %s: %v", user.ID, err)
		context.Respond(&api.LoginResponse{Success: false, Error: "Login failed"})
		return
	}

	user.LastActive = time.Now()
	if a.db != nil {
		if err := a.db.SaveUser(stdctx.Background(), user); err != nil {
			log.Printf("UserActor: Failed to update last active for user %s: %v", user.ID, err)
		}
	}

	context.Respond(&api.LoginResponse{
		Success:  true,
		Token:    token,
		UserID:   user.ID.String(),
		Username: user.Username,
	})
}

func (a *UserActor) handleGetProfile(context actor.Context, msg *GetUserProfileMsg) {
	if user, exists := a.usersByID[msg.UserID]; exists {
		context.Respond(user)
		return
	}

	if a.db != nil {
		user, err := a.db.GetUser(stdctx.Background(), msg.UserID)
		if err == nil {
			a.usersByID[user.ID] = user
			a.emailToID[user.Email] = user.ID
			context.Respond(user)
			return
		}
	}

	context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
}

func (a *UserActor) handleUpdateProfile(context actor.Context, msg *UpdateProfileMsg) {
	user, exists := a.usersByID[msg.UserID]
	if !exists && a.db != nil {
		loaded, err := a.db.GetUser(stdctx.Background(), msg.UserID)
		if err == nil {
			user = loaded
			a.usersByID[user.ID] = user
			a.emailToID[user.Email] = user.ID
			exists = true
		}
	}
	if !exists {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}

	if msg.NewUsername != "" {
		user.Username = msg.NewUsername
	}
	if msg.ProfileImageURL != "" {
		user.ProfileImageURL = msg.ProfileImageURL
	}

	if a.db != nil {
		if err := a.db.SaveUser(stdctx.Background(), user); err != nil {
			log.Printf("UserActor: Failed to persist profile update for user %s: %v", user.ID, err)
		}
	}

	context.Respond(user)
}

func (a *UserActor) findByEmail(email string) *models.User {
	if id, ok := a.emailToID[email]; ok {
		return a.usersByID[id]
	}

	if a.db != nil {
		user, err := a.db.GetUserByEmail(stdctx.Background(), email)
		if err == nil {
			a.usersByID[user.ID] = user
			a.emailToID[user.Email] = user.ID
			return user
		}
	}

	return nil
}
