package models

// UserAccount is an account as managed through the admin screens.
// Password is write-only: it is sent on create/update and never returned
// by the server.
type UserAccount struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Score    int    `json:"score"`
	Password string `json:"password,omitempty"`
}
