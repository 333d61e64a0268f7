package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/kmehta-dev/drivehub/internal/models"
)

// CreateUser registers an account with the default storage quota.
// The password must already be hashed by the caller.
func (s *Store) CreateUser(ctx context.Context, email, hashedPassword string) (*models.User, error) {
	user := models.User{
		ID:         uuid.New(),
		Email:      email,
		Password:   hashedPassword,
		QuotaBytes: models.DefaultQuotaBytes,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.ErrDuplicateUser
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrUserNotFound)
	}
	return &user, nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password", hashedPassword)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// StorageUsed sums the sizes of all files owned by the user.
func (s *Store) StorageUsed(ctx context.Context, userID uuid.UUID) (int64, error) {
	var used int64
	err := s.db.WithContext(ctx).
		Model(&models.File{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(size), 0)").
		Scan(&used).Error
	return used, err
}
