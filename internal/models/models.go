package models

// LikeKind identifies the kind of content a like targets.
type LikeKind string

const (
	PostLike    LikeKind = "post"
	CommentLike LikeKind = "comment"
)

// StatusResponse is a generic success/failure payload.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LikeStatus is the result of a like toggle: the actor's new membership state
// and the target's new counter value.
type LikeStatus struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}
