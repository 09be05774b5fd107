package domain

import "time"

const (
	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)

// User is the stored identity record. PasswordHash is empty for accounts
// created through Google sign-in until a password reset sets one.
type User struct {
	ID           UserID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Username     string    `gorm:"type:citext;not null;uniqueIndex:ux_users_username" db:"username" json:"username"`
	Email        string    `gorm:"type:citext;not null;uniqueIndex:ux_users_email" db:"email" json:"email"`
	PasswordHash string    `gorm:"type:text;not null;default:''" db:"password_hash" json:"-"`
	DisplayName  string    `gorm:"type:text;not null;default:''" db:"display_name" json:"displayName,omitempty"`
	Picture      *string   `gorm:"type:text" db:"picture" json:"picture,omitempty"`
	AuthProvider string    `gorm:"type:text;not null;default:'local'" db:"auth_provider" json:"authProvider"`
	CreatedAt    time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// GoogleIdentity is what a verified Google ID token tells us about its holder.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}
