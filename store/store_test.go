package store_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/models"
	"yatube/store"
	"yatube/store/storetest"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	leo := storetest.MakeUser(t, s, "leo")

	byName, err := s.UserByUsername(ctx, "leo")
	require.NoError(t, err)
	assert.Equal(t, leo.ID, byName.ID)

	byID, err := s.UserByID(ctx, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", byID.Username)

	err = s.CreateUser(ctx, &models.User{Username: "leo", Password: "x"})
	assert.True(t, errors.Is(err, store.ErrUsernameTaken))

	_, err = s.UserByUsername(ctx, "nobody")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestGroupSlugs(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)

	group := storetest.MakeGroup(t, s, "Тестовая группа")
	assert.Equal(t, "testovaya-gruppa", group.Slug)

	found, err := s.GroupBySlug(ctx, "testovaya-gruppa")
	require.NoError(t, err)
	assert.Equal(t, group.ID, found.ID)

	err = s.CreateGroup(ctx, &models.Group{Title: "тестовая  ГРУППА"})
	assert.True(t, errors.Is(err, store.ErrSlugTaken))

	// an explicit slug is transliterated again on save
	found.Slug = "Новый Адрес"
	require.NoError(t, s.SaveGroup(ctx, found))
	assert.Equal(t, "novyij-adres", found.Slug)
	_, err = s.GroupBySlug(ctx, "novyij-adres")
	require.NoError(t, err)

	// saving the group under its own slug is not a conflict
	require.NoError(t, s.SaveGroup(ctx, found))

	_, err = s.GroupBySlug(ctx, "does-not-exist")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestDeleteGroupKeepsPosts(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	author := storetest.MakeUser(t, s, "")
	group := storetest.MakeGroup(t, s, "")
	post := storetest.MakePost(t, s, author, group)

	require.NoError(t, s.DeleteGroup(ctx, group.ID))

	reloaded, err := s.PostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.GroupID)
	assert.Nil(t, reloaded.Group)

	err = s.DeleteGroup(ctx, group.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestPostsOrderingAndScopes(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	ann := storetest.MakeUser(t, s, "ann")
	bob := storetest.MakeUser(t, s, "bob")
	group := storetest.MakeGroup(t, s, "cats")

	first := storetest.MakePost(t, s, ann, group)
	second := storetest.MakePost(t, s, bob, nil)
	third := storetest.MakePost(t, s, ann, nil)

	all, err := s.ListPosts(ctx, store.AllPosts())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "ann", all[0].Author.Username)

	inGroup, err := s.ListPosts(ctx, store.PostsInGroup(group.ID))
	require.NoError(t, err)
	require.Len(t, inGroup, 1)
	require.NotNil(t, inGroup[0].Group)
	assert.Equal(t, "cats", inGroup[0].Group.Title)

	byAnn, err := s.CountPosts(ctx, store.PostsByAuthor(ann.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), byAnn)
}

func TestPagePosts(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	author := storetest.MakeUser(t, s, "")
	posts := storetest.MakePosts(t, s, 13, author, nil)

	firstPage, page, err := s.PagePosts(ctx, store.AllPosts(), 10, "")
	require.NoError(t, err)
	assert.Len(t, firstPage, 10)
	assert.Equal(t, 2, page.NumPages)
	assert.Equal(t, posts[12].ID, firstPage[0].ID)

	secondPage, page, err := s.PagePosts(ctx, store.AllPosts(), 10, "2")
	require.NoError(t, err)
	assert.Len(t, secondPage, 3)
	assert.Equal(t, posts[0].ID, secondPage[2].ID)

	clamped, page, err := s.PagePosts(ctx, store.AllPosts(), 10, "50")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Len(t, clamped, 3)
}

func TestUpdatePostKeepsPubDateAndAuthor(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	author := storetest.MakeUser(t, s, "")
	group := storetest.MakeGroup(t, s, "")
	post := storetest.MakePost(t, s, author, group)
	original, err := s.PostByID(ctx, post.ID)
	require.NoError(t, err)

	edit := *original
	edit.Text = "edited"
	edit.GroupID = nil
	edit.Image = "posts/new.gif"
	require.NoError(t, s.UpdatePost(ctx, &edit))

	reloaded, err := s.PostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", reloaded.Text)
	assert.Nil(t, reloaded.GroupID)
	assert.Equal(t, "posts/new.gif", reloaded.Image)
	assert.True(t, original.PubDate.Equal(reloaded.PubDate))
	assert.Equal(t, author.ID, reloaded.AuthorID)
}

func TestDeletePostCascadesComments(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	author := storetest.MakeUser(t, s, "")
	post := storetest.MakePost(t, s, author, nil)
	other := storetest.MakePost(t, s, author, nil)

	require.NoError(t, s.CreateComment(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "first"}))
	require.NoError(t, s.CreateComment(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "second"}))
	require.NoError(t, s.CreateComment(ctx, &models.Comment{PostID: other.ID, AuthorID: author.ID, Text: "elsewhere"}))

	comments, err := s.CommentsForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, author.Username, comments[0].Author.Username)

	require.NoError(t, s.DeletePost(ctx, post.ID))

	_, err = s.PostByID(ctx, post.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	var left int64
	require.NoError(t, s.DB().Model(&models.Comment{}).Count(&left).Error)
	assert.Equal(t, int64(1), left)

	assert.True(t, errors.Is(s.DeletePost(ctx, post.ID), store.ErrNotFound))
}

func TestFollows(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	reader := storetest.MakeUser(t, s, "")
	writer := storetest.MakeUser(t, s, "")
	bystander := storetest.MakeUser(t, s, "")

	exists, err := s.FollowExists(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.CreateFollow(ctx, reader.ID, writer.ID))
	require.NoError(t, s.CreateFollow(ctx, reader.ID, writer.ID))

	exists, err = s.FollowExists(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	followers, err := s.CountFollowers(ctx, writer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	storetest.MakePost(t, s, writer, nil)
	storetest.MakePost(t, s, bystander, nil)
	feed, err := s.ListPosts(ctx, store.PostsByFollowedAuthors(reader.ID))
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, writer.ID, feed[0].AuthorID)

	require.NoError(t, s.DeleteFollow(ctx, reader.ID, writer.ID))
	exists, err = s.FollowExists(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.True(t, errors.Is(s.DeleteFollow(ctx, reader.ID, writer.ID), store.ErrNotFound))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := store.Open("oracle", "dsn")
	assert.Error(t, err)
}
