// Package feed assembles the paginated post listings shown by each view.
package feed

import (
	"context"

	"yatube/models"
	"yatube/paginator"
	"yatube/store"
	"yatube/subscription"
)

// Listing is one page of a feed.
type Listing struct {
	Page  paginator.Page
	Posts []models.Post
}

type GroupListing struct {
	Listing
	Group *models.Group
}

type ProfileListing struct {
	Listing
	Author            *models.User
	Following         bool
	ShowFollowControl bool
	PostCount         int64
	Counts            subscription.Counts
}

type PostDetail struct {
	Post            *models.Post
	Comments        []models.Comment
	AuthorPostCount int64
}

type Assembler struct {
	store         *store.Store
	subscriptions *subscription.Service
	perPage       int
}

func NewAssembler(s *store.Store, subscriptions *subscription.Service, perPage int) *Assembler {
	return &Assembler{store: s, subscriptions: subscriptions, perPage: perPage}
}

func (a *Assembler) PerPage() int {
	return a.perPage
}

func (a *Assembler) listing(ctx context.Context, scope store.PostScope, rawPage string) (Listing, error) {
	posts, page, err := a.store.PagePosts(ctx, scope, a.perPage, rawPage)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Page: page, Posts: posts}, nil
}

// Global lists every post.
func (a *Assembler) Global(ctx context.Context, rawPage string) (*Listing, error) {
	l, err := a.listing(ctx, store.AllPosts(), rawPage)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Group lists the posts of the group with the given slug.
func (a *Assembler) Group(ctx context.Context, slug, rawPage string) (*GroupListing, error) {
	group, err := a.store.GroupBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	l, err := a.listing(ctx, store.PostsInGroup(group.ID), rawPage)
	if err != nil {
		return nil, err
	}
	return &GroupListing{Listing: l, Group: group}, nil
}

// Profile lists the posts of username, with the follow state of viewer.
func (a *Assembler) Profile(ctx context.Context, viewer *models.User, username, rawPage string) (*ProfileListing, error) {
	author, err := a.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	l, err := a.listing(ctx, store.PostsByAuthor(author.ID), rawPage)
	if err != nil {
		return nil, err
	}
	following, err := a.subscriptions.IsFollowing(ctx, viewer, author)
	if err != nil {
		return nil, err
	}
	counts, err := a.subscriptions.Counts(ctx, author)
	if err != nil {
		return nil, err
	}
	return &ProfileListing{
		Listing:           l,
		Author:            author,
		Following:         following,
		ShowFollowControl: subscription.CanShowFollowControl(viewer, author),
		PostCount:         l.Page.Count,
		Counts:            counts,
	}, nil
}

// Following lists posts by the authors viewer follows.
func (a *Assembler) Following(ctx context.Context, viewer *models.User, rawPage string) (*Listing, error) {
	posts, page, err := a.subscriptions.FollowedAuthorsPage(ctx, viewer, a.perPage, rawPage)
	if err != nil {
		return nil, err
	}
	return &Listing{Page: page, Posts: posts}, nil
}

func (a *Assembler) PostDetail(ctx context.Context, id uint) (*PostDetail, error) {
	post, err := a.store.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := a.store.CommentsForPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	count, err := a.store.CountPosts(ctx, store.PostsByAuthor(post.AuthorID))
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments, AuthorPostCount: count}, nil
}
