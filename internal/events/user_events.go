package events

import "time"

type UserRegistered struct {
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	Provider string    `json:"provider"`
	At       time.Time `json:"at"`
}

func (UserRegistered) EventName() string { return "user.registered" }

type UserSignedIn struct {
	UserID   string    `json:"userId"`
	Provider string    `json:"provider"`
	At       time.Time `json:"at"`
}

func (UserSignedIn) EventName() string { return "user.signed_in" }
