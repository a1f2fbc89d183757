package models

// Account roles as used on the wire. The portal calls regular members "user".
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Session is the client-side record of an authenticated identity.
// It exists only between a successful login and a logout (or a rejected
// credential); the token is opaque to the client.
type Session struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
