package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventra/model"

	"gorm.io/gorm"
)

type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormUserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *GormUserStore) SetResetToken(ctx context.Context, id uint, tokenHash string, expires time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]any{
			"reset_password_token":   tokenHash,
			"reset_password_expires": expires,
		})
	if res.Error != nil {
		return fmt.Errorf("store reset token for user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormUserStore) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expires > ?", tokenHash, now).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by reset token: %w", err)
	}
	return &user, nil
}

func (s *GormUserStore) ResetPassword(ctx context.Context, id uint, tokenHash, passwordHash string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND reset_password_token = ?", id, tokenHash).
		Updates(map[string]any{
			"password":               passwordHash,
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		})
	if res.Error != nil {
		return false, fmt.Errorf("reset password for user %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormUserStore) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("reset_password_expires IS NOT NULL AND reset_password_expires <= ?", now).
		Updates(map[string]any{
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("purge expired reset tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
