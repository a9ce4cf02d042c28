package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"yatube/models"
	"yatube/translit"
)

// CreateGroup inserts a group. The slug is derived by the model hook; a
// derived slug that is already in use yields ErrSlugTaken.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if err := s.checkSlugFree(ctx, group); err != nil {
		return err
	}
	return errors.Wrap(s.conn(ctx).Create(group).Error, "create group")
}

// SaveGroup writes every field of an existing group back, re-deriving the slug.
func (s *Store) SaveGroup(ctx context.Context, group *models.Group) error {
	if err := s.checkSlugFree(ctx, group); err != nil {
		return err
	}
	return errors.Wrap(s.conn(ctx).Save(group).Error, "save group")
}

func (s *Store) checkSlugFree(ctx context.Context, group *models.Group) error {
	source := group.Slug
	if source == "" {
		source = group.Title
	}
	slug := translit.SlugifyMax(source, models.GroupSlugMaxLength)
	if slug == "" {
		return models.ErrEmptySlug
	}

	var count int64
	err := s.conn(ctx).Model(&models.Group{}).
		Where("slug = ? AND id <> ?", slug, group.ID).
		Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "check slug")
	}
	if count > 0 {
		return errors.Wrapf(ErrSlugTaken, "slug %q", slug)
	}
	return nil
}

func (s *Store) GroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := s.conn(ctx).Where("slug = ?", slug).First(&group).Error
	if err != nil {
		return nil, notFound(err, "group %q", slug)
	}
	return &group, nil
}

func (s *Store) GroupByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	err := s.conn(ctx).First(&group, id).Error
	if err != nil {
		return nil, notFound(err, "group %d", id)
	}
	return &group, nil
}

func (s *Store) Groups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := s.conn(ctx).Order("title ASC, id ASC").Find(&groups).Error
	return groups, errors.Wrap(err, "list groups")
}

// DeleteGroup removes a group; its posts stay, with no group.
func (s *Store) DeleteGroup(ctx context.Context, id uint) error {
	var tx GormTransaction = func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return errors.Wrap(err, "detach posts")
		}
		res := tx.Delete(&models.Group{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete group")
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(ErrNotFound, "group %d", id)
		}
		return nil
	}
	return s.conn(ctx).Transaction(tx)
}
