package store

import (
	"errors"

	"authflow/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("record not found")

const pgUniqueViolation = "23505"

// Unique constraints on users, by the field they protect. Names match the
// migration and the gorm uniqueIndex tags on domain.User.
var uniqueConstraintFields = map[string]string{
	"ux_users_email":    domain.FieldEmail,
	"ux_users_username": domain.FieldUsername,
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// uniqueViolation reports whether err is a unique-key violation and, when the
// driver exposes it, which user field the violated constraint protects.
func uniqueViolation(db *gorm.DB, err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return uniqueConstraintFields[pgErr.ConstraintName], true
	}
	if t, isTranslator := db.Dialector.(gorm.ErrorTranslator); isTranslator {
		if errors.Is(t.Translate(err), gorm.ErrDuplicatedKey) {
			return "", true
		}
	}
	return "", errors.Is(err, gorm.ErrDuplicatedKey)
}
