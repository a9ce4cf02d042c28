package store

import (
	"context"

	"github.com/pkg/errors"

	"yatube/models"
)

func (s *Store) CreateFollow(ctx context.Context, userID, authorID uint) error {
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	return errors.Wrap(s.conn(ctx).Create(&follow).Error, "create follow")
}

func (s *Store) FollowExists(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check follow")
	}
	return count > 0, nil
}

// DeleteFollow removes every edge userID -> authorID, or returns ErrNotFound
// when there was none.
func (s *Store) DeleteFollow(ctx context.Context, userID, authorID uint) error {
	res := s.conn(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete follow")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "follow %d -> %d", userID, authorID)
	}
	return nil
}

// CountFollowers counts distinct users following authorID.
func (s *Store) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Follow{}).
		Where("author_id = ?", authorID).
		Distinct("user_id").
		Count(&count).Error
	return count, errors.Wrap(err, "count followers")
}

// CountFollowing counts distinct authors userID follows.
func (s *Store) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Distinct("author_id").
		Count(&count).Error
	return count, errors.Wrap(err, "count following")
}
