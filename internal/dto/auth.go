package dto

import "time"

// LoginRequest carries submitted credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse describes a live session to the client.
type SessionResponse struct {
	Token    string    `json:"token,omitempty"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	IssuedAt time.Time `json:"issued_at"`
}

// AccountResponse represents a login account, password hash excluded.
type AccountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// AccountRequest is the admin payload for creating or updating an account.
// Password is optional on update; when empty the existing hash is kept.
type AccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active,omitempty"`
}
