package store

import (
	"context"
	"time"

	"authflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OTPStore struct {
	st *Store
	db *gorm.DB
}

func (s *Store) OTPs() *OTPStore { return &OTPStore{st: s, db: s.DB} }

// Replace stores code as the only outstanding code for its email. Earlier
// codes for the same email are deleted in the same transaction.
func (o *OTPStore) Replace(ctx context.Context, code *domain.OneTimeCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	return o.st.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)
		if err := db.Where("email = ?", code.Email).Delete(&domain.OneTimeCode{}).Error; err != nil {
			return err
		}
		return db.Create(code).Error
	})
}

// Find returns the newest code for email whose hash equals codeHash.
func (o *OTPStore) Find(ctx context.Context, email, codeHash string) (*domain.OneTimeCode, error) {
	var out domain.OneTimeCode
	err := o.db.WithContext(ctx).
		Where("email = ? AND code_hash = ?", email, codeHash).
		Order("created_at DESC").
		First(&out).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (o *OTPStore) DeleteByEmail(ctx context.Context, email string) error {
	return o.db.WithContext(ctx).Where("email = ?", email).Delete(&domain.OneTimeCode{}).Error
}

// PurgeCreatedBefore removes codes created before cutoff and reports how many
// rows went away.
func (o *OTPStore) PurgeCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := o.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&domain.OneTimeCode{})
	return tx.RowsAffected, tx.Error
}
