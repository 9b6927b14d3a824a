package api

// LoginResponse is the wire shape of a login attempt. The client stores
// UserID alongside the token and sends both on every authenticated call.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token,omitempty"`
	Error    string `json:"error,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}
