// Package subscription manages follow edges between users and the feed of
// posts written by followed authors.
package subscription

import (
	"context"

	"yatube/models"
	"yatube/paginator"
	"yatube/store"
)

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// IsFollowing reports whether viewer follows author. A nil viewer is the
// anonymous user and never follows anyone.
func (s *Service) IsFollowing(ctx context.Context, viewer, author *models.User) (bool, error) {
	if viewer == nil || author == nil {
		return false, nil
	}
	return s.store.FollowExists(ctx, viewer.ID, author.ID)
}

// CanShowFollowControl hides the follow button on one's own profile. It
// gates the page only; Follow itself does not check it.
func CanShowFollowControl(viewer, author *models.User) bool {
	if viewer == nil || author == nil {
		return true
	}
	return viewer.ID != author.ID
}

// Follow adds the edge viewer -> author. Repeated calls add repeated edges.
func (s *Service) Follow(ctx context.Context, viewer, author *models.User) error {
	return s.store.CreateFollow(ctx, viewer.ID, author.ID)
}

// Unfollow removes the edge viewer -> author, returning store.ErrNotFound
// if there was none.
func (s *Service) Unfollow(ctx context.Context, viewer, author *models.User) error {
	return s.store.DeleteFollow(ctx, viewer.ID, author.ID)
}

// FollowedAuthorsFeed returns every post by an author viewer follows,
// newest first.
func (s *Service) FollowedAuthorsFeed(ctx context.Context, viewer *models.User) ([]models.Post, error) {
	if viewer == nil {
		return nil, nil
	}
	return s.store.ListPosts(ctx, store.PostsByFollowedAuthors(viewer.ID))
}

// FollowedAuthorsPage is FollowedAuthorsFeed cut to one page.
func (s *Service) FollowedAuthorsPage(ctx context.Context, viewer *models.User, perPage int, rawPage string) ([]models.Post, paginator.Page, error) {
	if viewer == nil {
		return nil, paginator.New(0, perPage, rawPage), nil
	}
	return s.store.PagePosts(ctx, store.PostsByFollowedAuthors(viewer.ID), perPage, rawPage)
}

// Counts holds the numbers shown in a profile header.
type Counts struct {
	Followers int64
	Following int64
}

func (s *Service) Counts(ctx context.Context, user *models.User) (Counts, error) {
	followers, err := s.store.CountFollowers(ctx, user.ID)
	if err != nil {
		return Counts{}, err
	}
	following, err := s.store.CountFollowing(ctx, user.ID)
	if err != nil {
		return Counts{}, err
	}
	return Counts{Followers: followers, Following: following}, nil
}
