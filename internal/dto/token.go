package dto

import "time"

// AuthResponse is returned by every operation that signs a user in.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}
