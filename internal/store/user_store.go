package store

import (
	"context"
	"time"

	"authflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

// Create inserts usr. A unique-key violation is returned as
// *domain.DuplicateIdentityError naming the colliding field; the database
// constraint is what decides, regardless of any earlier existence checks.
func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	now := time.Now().UTC()
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = now
	}
	usr.UpdatedAt = usr.CreatedAt

	err := u.db.WithContext(ctx).Create(usr).Error
	if err == nil {
		return nil
	}
	field, dup := uniqueViolation(u.db, err)
	if !dup {
		return err
	}
	if field == "" {
		field = u.collidingField(ctx, usr)
	}
	return &domain.DuplicateIdentityError{Field: field}
}

// collidingField is used when the driver does not report the constraint
// name. It asks the database which of the unique values is already present.
func (u *UserStore) collidingField(ctx context.Context, usr *domain.User) string {
	var n int64
	if err := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ? AND id <> ?", usr.Email, usr.ID).
		Count(&n).Error; err == nil && n > 0 {
		return domain.FieldEmail
	}
	return domain.FieldUsername
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (u *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UpdatePasswordHash overwrites the stored hash in place.
func (u *UserStore) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	tx := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_hash": hash,
			"updated_at":    time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
