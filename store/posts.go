package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"yatube/models"
	"yatube/paginator"
)

// PostScope narrows a post query to one feed's rows.
type PostScope func(db *gorm.DB) *gorm.DB

func AllPosts() PostScope {
	return func(db *gorm.DB) *gorm.DB { return db }
}

func PostsInGroup(groupID uint) PostScope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("group_id = ?", groupID)
	}
}

func PostsByAuthor(authorID uint) PostScope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ?", authorID)
	}
}

// PostsByFollowedAuthors selects posts written by anyone userID follows.
// Duplicate follow edges do not duplicate posts.
func PostsByFollowedAuthors(userID uint) PostScope {
	return func(db *gorm.DB) *gorm.DB {
		followed := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Follow{}).
			Select("author_id").
			Where("user_id = ?", userID)
		return db.Where("author_id IN (?)", followed)
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("pub_date DESC").Order("id DESC")
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Group")
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	return errors.Wrap(s.conn(ctx).Create(post).Error, "create post")
}

func (s *Store) PostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.conn(ctx).Scopes(withRelations).First(&post, id).Error
	if err != nil {
		return nil, notFound(err, "post %d", id)
	}
	return &post, nil
}

// UpdatePost writes the editable fields of a post. PubDate and Author are
// never touched.
func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	changes := models.Post{Text: post.Text, GroupID: post.GroupID, Image: post.Image}
	res := s.conn(ctx).Model(&models.Post{ID: post.ID}).Select("Text", "GroupID", "Image").Updates(changes)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update post %d", post.ID)
	}
	return nil
}

// DeletePost removes a post together with its comments.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	var tx GormTransaction = func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return errors.Wrap(err, "delete comments")
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete post")
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(ErrNotFound, "post %d", id)
		}
		return nil
	}
	return s.conn(ctx).Transaction(tx)
}

func (s *Store) CountPosts(ctx context.Context, scope PostScope) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Post{}).Scopes(scope).Count(&count).Error
	return count, errors.Wrap(err, "count posts")
}

// ListPosts returns every post in scope, newest first.
func (s *Store) ListPosts(ctx context.Context, scope PostScope) ([]models.Post, error) {
	var posts []models.Post
	err := s.conn(ctx).Scopes(scope, newestFirst, withRelations).Find(&posts).Error
	return posts, errors.Wrap(err, "list posts")
}

// PagePosts returns the page of posts in scope selected by rawPage.
func (s *Store) PagePosts(ctx context.Context, scope PostScope, perPage int, rawPage string) ([]models.Post, paginator.Page, error) {
	count, err := s.CountPosts(ctx, scope)
	if err != nil {
		return nil, paginator.Page{}, err
	}
	page := paginator.New(count, perPage, rawPage)

	var posts []models.Post
	err = s.conn(ctx).
		Scopes(scope, newestFirst, withRelations, paginator.Scope(page)).
		Find(&posts).Error
	if err != nil {
		return nil, page, errors.Wrap(err, "page posts")
	}
	return posts, page, nil
}
