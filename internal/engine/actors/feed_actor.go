package actors

import (
	stdctx "context"
	"log"
	"sort"
	"time"

	"lilypad/internal/database"
	"lilypad/internal/models"
	"lilypad/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for FeedActor
type (
	CreatePostMsg struct {
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		AuthorID  uuid.UUID `json:"authorId"`
		ImageURLs []string  `json:"imageUrls"`
		Tags      []string  `json:"tags"`
	}

	GetPostMsg struct {
		PostID uuid.UUID `json:"postId"`
	}

	GetAllPostsMsg struct {
		Limit int `json:"limit"`
	}

	// DeletePostMsg removes a post. Only the owner may delete; the check is
	// an ID comparison, the store enforces nothing stronger. Comments on the
	// post are left in place.
	DeletePostMsg struct {
		PostID uuid.UUID `json:"postId"`
		UserID uuid.UUID `json:"userId"`
	}

	CreateCommentMsg struct {
		Content  string    `json:"content"`
		AuthorID uuid.UUID `json:"authorId"`
		PostID   uuid.UUID `json:"postId"`
	}

	DeleteCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		UserID    uuid.UUID `json:"userId"`
	}

	// GetPostCommentsMsg is a one-shot fetch; there is no live comment
	// subscription, callers re-invoke to refresh.
	GetPostCommentsMsg struct {
		PostID uuid.UUID `json:"postId"`
	}

	// AdjustLikesMsg shifts a target's like counter. Sent by the engagement
	// actor as one half of a toggle. Responds with the new counter value.
	AdjustLikesMsg struct {
		TargetID uuid.UUID       `json:"targetId"`
		Kind     models.LikeKind `json:"kind"`
		Delta    int             `json:"delta"`
	}

	GetCountsMsg struct{}

	loadFeedFromDBMsg struct{}
)

// FeedActor manages posts and their comments.
type FeedActor struct {
	postsByID    map[uuid.UUID]*models.Post
	commentsByID map[uuid.UUID]*models.Comment
	postComments map[uuid.UUID][]uuid.UUID
	userCache    map[uuid.UUID]string

	db      database.Store
	metrics *utils.MetricsCollector
}

func NewFeedActor(db database.Store, metrics *utils.MetricsCollector) actor.Actor {
	return &FeedActor{
		postsByID:    make(map[uuid.UUID]*models.Post),
		commentsByID: make(map[uuid.UUID]*models.Comment),
		postComments: make(map[uuid.UUID][]uuid.UUID),
		userCache:    make(map[uuid.UUID]string),
		db:           db,
		metrics:      metrics,
	}
}

func (a *FeedActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("FeedActor started with PID: %v", context.Self())
		if a.db != nil {
			context.Send(context.Self(), &loadFeedFromDBMsg{})
		}

	case *loadFeedFromDBMsg:
		a.handleLoadFeed()

	case *CreatePostMsg:
		a.handleCreatePost(context, msg)

	case *GetPostMsg:
		a.handleGetPost(context, msg)

	case *GetAllPostsMsg:
		a.handleGetAllPosts(context, msg)

	case *DeletePostMsg:
		a.handleDeletePost(context, msg)

	case *CreateCommentMsg:
		a.handleCreateComment(context, msg)

	case *DeleteCommentMsg:
		a.handleDeleteComment(context, msg)

	case *GetPostCommentsMsg:
		a.handleGetPostComments(context, msg)

	case *AdjustLikesMsg:
		a.handleAdjustLikes(context, msg)

	case *GetCountsMsg:
		context.Respond(len(a.postsByID))

	default:
		log.Printf("FeedActor: Unknown message type %T", msg)
	}
}

func (a *FeedActor) handleLoadFeed() {
	ctx := stdctx.Background()

	posts, err := a.db.GetAllPosts(ctx)
	if err != nil {
		log.Printf("FeedActor: Failed to load posts from database: %v", err)
		return
	}

	for _, post := range posts {
		a.postsByID[post.ID] = post

		comments, err := a.db.GetPostComments(ctx, post.ID)
		if err != nil {
			log.Printf("FeedActor: Failed to load comments for post %s: %v", post.ID, err)
			continue
		}
		for _, comment := range comments {
			a.commentsByID[comment.ID] = comment
			a.postComments[post.ID] = append(a.postComments[post.ID], comment.ID)
		}
	}

	log.Printf("FeedActor: Loaded %d posts from database", len(posts))
}

func (a *FeedActor) handleCreatePost(context actor.Context, msg *CreatePostMsg) {
	startTime := time.Now()

	if msg.AuthorID == uuid.Nil {
		context.Respond(utils.NewLoginRequiredError("create posts"))
		return
	}
	if msg.Title == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Title is required", nil))
		return
	}

	newPost := &models.Post{
		ID:             uuid.New(),
		Title:          msg.Title,
		Content:        msg.Content,
		AuthorID:       msg.AuthorID,
		AuthorUsername: a.username(msg.AuthorID),
		ImageURLs:      msg.ImageURLs,
		Tags:           msg.Tags,
		Likes:          0,
		CommentCount:   0,
		CreatedAt:      time.Now(),
	}

	a.postsByID[newPost.ID] = newPost

	if a.db != nil {
		if err := a.db.SavePost(stdctx.Background(), newPost); err != nil {
			log.Printf("FeedActor: Failed to persist post %s: %v", newPost.ID, err)
		}
	}

	if a.metrics != nil {
		a.metrics.AddOperationLatency("create_post", time.Since(startTime))
	}
	context.Respond(newPost)
}

func (a *FeedActor) handleGetPost(context actor.Context, msg *GetPostMsg) {
	if post, exists := a.postsByID[msg.PostID]; exists {
		context.Respond(post)
		return
	}

	if a.db != nil {
		post, err := a.db.GetPost(stdctx.Background(), msg.PostID)
		if err == nil {
			a.postsByID[post.ID] = post
			context.Respond(post)
			return
		}
	}

	context.Respond(utils.NewAppError(utils.ErrNotFound, "Post not found", nil))
}

func (a *FeedActor) handleGetAllPosts(context actor.Context, msg *GetAllPostsMsg) {
	posts := make([]*models.Post, 0, len(a.postsByID))
	for _, post := range a.postsByID {
		posts = append(posts, post)
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	if msg.Limit > 0 && len(posts) > msg.Limit {
		posts = posts[:msg.Limit]
	}

	context.Respond(posts)
}

func (a *FeedActor) handleDeletePost(context actor.Context, msg *DeletePostMsg) {
	post, exists := a.postsByID[msg.PostID]
	if !exists {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Post not found", nil))
		return
	}

	if post.AuthorID != msg.UserID {
		context.Respond(utils.NewForbiddenError("only the post owner can delete it"))
		return
	}

	delete(a.postsByID, msg.PostID)

	if a.db != nil {
		if err := a.db.DeletePost(stdctx.Background(), msg.PostID); err != nil {
			log.Printf("FeedActor: Failed to delete post %s from database: %v", msg.PostID, err)
		}
	}

	// Comments are intentionally untouched: deletion does not cascade, the
	// post's comments survive as orphans.
	context.Respond(&models.StatusResponse{Success: true, Message: "Post deleted"})
}

func (a *FeedActor) handleCreateComment(context actor.Context, msg *CreateCommentMsg) {
	startTime := time.Now()

	if msg.AuthorID == uuid.Nil {
		context.Respond(utils.NewLoginRequiredError("comment on posts"))
		return
	}

	post, exists := a.postsByID[msg.PostID]
	if !exists {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Post not found", nil))
		return
	}

	newComment := &models.Comment{
		ID:             uuid.New(),
		Content:        msg.Content,
		AuthorID:       msg.AuthorID,
		AuthorUsername: a.username(msg.AuthorID),
		PostID:         msg.PostID,
		Likes:          0,
		CreatedAt:      time.Now(),
	}

	a.commentsByID[newComment.ID] = newComment
	a.postComments[msg.PostID] = append(a.postComments[msg.PostID], newComment.ID)
	post.CommentCount++

	if a.db != nil {
		ctx := stdctx.Background()
		if err := a.db.SaveComment(ctx, newComment); err != nil {
			log.Printf("FeedActor: Failed to persist comment %s: %v", newComment.ID, err)
		}
		if err := a.db.AdjustCommentCount(ctx, msg.PostID, 1); err != nil {
			log.Printf("FeedActor: Failed to bump comment count on post %s: %v", msg.PostID, err)
		}
	}

	if a.metrics != nil {
		a.metrics.AddOperationLatency("create_comment", time.Since(startTime))
	}
	context.Respond(newComment)
}

func (a *FeedActor) handleDeleteComment(context actor.Context, msg *DeleteCommentMsg) {
	comment, exists := a.commentsByID[msg.CommentID]
	if !exists {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Comment not found", nil))
		return
	}

	if comment.AuthorID != msg.UserID {
		context.Respond(utils.NewForbiddenError("only the comment owner can delete it"))
		return
	}

	delete(a.commentsByID, msg.CommentID)
	if ids, ok := a.postComments[comment.PostID]; ok {
		remaining := make([]uuid.UUID, 0, len(ids)-1)
		for _, id := range ids {
			if id != msg.CommentID {
				remaining = append(remaining, id)
			}
		}
		a.postComments[comment.PostID] = remaining
	}
	if post, ok := a.postsByID[comment.PostID]; ok && post.CommentCount > 0 {
		post.CommentCount--
	}

	if a.db != nil {
		ctx := stdctx.Background()
		if err := a.db.DeleteComment(ctx, msg.CommentID); err != nil {
			log.Printf("FeedActor: Failed to delete comment %s from database: %v", msg.CommentID, err)
		}
		if err := a.db.AdjustCommentCount(ctx, comment.PostID, -1); err != nil {
			log.Printf("FeedActor: Failed to drop comment count on post %s: %v", comment.PostID, err)
		}
	}

	context.Respond(&models.StatusResponse{Success: true, Message: "Comment deleted"})
}

func (a *FeedActor) handleGetPostComments(context actor.Context, msg *GetPostCommentsMsg) {
	ids := a.postComments[msg.PostID]
	comments := make([]*models.Comment, 0, len(ids))
	for _, id := range ids {
		if comment, exists := a.commentsByID[id]; exists {
			comments = append(comments, comment)
		}
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	context.Respond(comments)
}

func (a *FeedActor) handleAdjustLikes(context actor.Context, msg *AdjustLikesMsg) {
	switch msg.Kind {
	case models.PostLike:
		post, exists := a.postsByID[msg.TargetID]
		if !exists {
			context.Respond(utils.NewAppError(utils.ErrNotFound, "Post not found", nil))
			return
		}
		post.Likes += msg.Delta
		context.Respond(post.Likes)

	case models.CommentLike:
		comment, exists := a.commentsByID[msg.TargetID]
		if !exists {
			context.Respond(utils.NewAppError(utils.ErrNotFound, "Comment not found", nil))
			return
		}
		comment.Likes += msg.Delta
		context.Respond(comment.Likes)

	default:
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Unknown like target kind", nil))
	}
}

// username resolves the author's display name for denormalization, using the
// cache first.
func (a *FeedActor) username(userID uuid.UUID) string {
	if username, ok := a.userCache[userID]; ok {
		return username
	}
	if a.db == nil {
		return ""
	}
	user, err := a.db.GetUser(stdctx.Background(), userID)
	if err != nil {
		log.Printf("FeedActor: Failed to fetch user %s for username: %v", userID, err)
		return ""
	}
	a.userCache[userID] = user.Username
	return user.Username
}
