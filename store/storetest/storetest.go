// Package storetest provides throwaway databases and fixtures for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"yatube/models"
	"yatube/store"
)

var sequence atomic.Int64

// NewDB opens a private in-memory sqlite database with every table
// migrated. It is closed when the test finishes.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	db, err := store.Open("sqlite", fmt.Sprintf("file:testonlydb_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive and serialises
	// access to it
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, store.Migrate(db))
	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

func NewStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(NewDB(t))
}

func next() int64 {
	return sequence.Add(1)
}

// MakeUser creates a user. Password is stored as given, not hashed.
func MakeUser(t *testing.T, s *store.Store, username string) *models.User {
	t.Helper()
	if username == "" {
		username = fmt.Sprintf("user_%d", next())
	}
	user := &models.User{Username: username, Password: "not-a-hash"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func MakeGroup(t *testing.T, s *store.Store, title string) *models.Group {
	t.Helper()
	if title == "" {
		title = fmt.Sprintf("group %d", next())
	}
	group := &models.Group{Title: title, Description: "description of " + title}
	require.NoError(t, s.CreateGroup(context.Background(), group))
	return group
}

// MakePost creates a post by author, optionally in group. Each post gets a
// strictly later PubDate than the previous one so ordering is stable.
func MakePost(t *testing.T, s *store.Store, author *models.User, group *models.Group) *models.Post {
	t.Helper()
	n := next()
	post := &models.Post{
		Text:     fmt.Sprintf("post number %d", n),
		AuthorID: author.ID,
		PubDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute),
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, s.CreatePost(context.Background(), post))
	return post
}

// MakePosts creates n posts and returns them oldest first.
func MakePosts(t *testing.T, s *store.Store, n int, author *models.User, group *models.Group) []*models.Post {
	t.Helper()
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, MakePost(t, s, author, group))
	}
	return posts
}
