package store

import (
	"context"

	"github.com/pkg/errors"

	"yatube/models"
)

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return errors.Wrap(s.conn(ctx).Create(comment).Error, "create comment")
}

// CommentsForPost lists a post's comments, oldest first.
func (s *Store) CommentsForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.conn(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created ASC").Order("id ASC").
		Find(&comments).Error
	return comments, errors.Wrapf(err, "comments of post %d", postID)
}
