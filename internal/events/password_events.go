package events

import "time"

// PasswordResetRequested is emitted only when a code was actually issued.
type PasswordResetRequested struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

func (PasswordResetRequested) EventName() string { return "password.reset_requested" }

type PasswordChanged struct {
	UserID string    `json:"userId"`
	Via    string    `json:"via"`
	At     time.Time `json:"at"`
}

func (PasswordChanged) EventName() string { return "password.changed" }
