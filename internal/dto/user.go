package dto

import (
	"time"

	"authflow/internal/domain"
)

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	Picture      string    `json:"picture,omitempty"`
	AuthProvider string    `json:"authProvider"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewUserResponse(u *domain.User) UserResponse {
	out := UserResponse{
		ID:           u.ID.String(),
		Username:     u.Username,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		AuthProvider: u.AuthProvider,
		CreatedAt:    u.CreatedAt,
	}
	if u.Picture != nil {
		out.Picture = *u.Picture
	}
	return out
}

type MeResponse struct {
	User UserResponse `json:"user"`
}
