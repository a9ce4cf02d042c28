package store

import (
	"context"

	"github.com/pkg/errors"

	"yatube/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	var count int64
	if err := s.conn(ctx).Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return errors.Wrap(err, "check username")
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	return errors.Wrap(s.conn(ctx).Create(user).Error, "create user")
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).First(&user, id).Error
	if err != nil {
		return nil, notFound(err, "user %d", id)
	}
	return &user, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user %q", username)
	}
	return &user, nil
}
