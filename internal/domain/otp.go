package domain

import "time"

// OneTimeCode is a password reset code addressed to an email. Only the
// SHA-256 of the code is stored.
type OneTimeCode struct {
	ID        CodeID    `gorm:"type:uuid;primaryKey" db:"id"`
	Email     string    `gorm:"type:citext;not null;index:ix_one_time_codes_email" db:"email"`
	CodeHash  string    `gorm:"type:text;not null" db:"code_hash"`
	CreatedAt time.Time `gorm:"not null;index:ix_one_time_codes_created_at" db:"created_at"`
}

func (OneTimeCode) TableName() string { return "one_time_codes" }

// ExpiresAt reports the last instant at which the code is still accepted.
func (c *OneTimeCode) ExpiresAt(ttl time.Duration) time.Time { return c.CreatedAt.Add(ttl) }

// ValidAt reports whether the code is inside its validity window at now.
func (c *OneTimeCode) ValidAt(now time.Time, ttl time.Duration) bool {
	return !now.After(c.ExpiresAt(ttl))
}
