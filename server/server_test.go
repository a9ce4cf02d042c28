package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/auth"
	"yatube/cache"
	"yatube/media"
	"yatube/middleware"
	"yatube/models"
	"yatube/store"
	"yatube/store/storetest"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

type testApp struct {
	server *Server
	store  *store.Store
	cache  *cache.PageCache
	media  *media.LocalStore
	tokens *auth.Tokens
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	local, err := media.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	app := &testApp{
		store:  storetest.NewStore(t),
		cache:  cache.NewPageCache(client, cache.IndexPagePrefix, 20*time.Second),
		media:  local,
		tokens: auth.NewTokens([]byte("test-secret"), time.Hour),
	}
	app.server, err = New(Options{
		Store:        app.store,
		PageCache:    app.cache,
		Media:        app.media,
		Tokens:       app.tokens,
		PostsPerPage: 10,
		MediaPath:    "/media/",
	})
	require.NoError(t, err)
	return app
}

// do serves req, signed in as user when user is not nil.
func (a *testApp) do(t *testing.T, req *http.Request, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		token, err := a.tokens.Issue(user.ID)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(w, req)
	return w
}

func (a *testApp) get(t *testing.T, path string, user *models.User) *httptest.ResponseRecorder {
	return a.do(t, httptest.NewRequest(http.MethodGet, path, nil), user)
}

func (a *testApp) postForm(t *testing.T, path string, values url.Values, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req, user)
}

func countPosts(body string) int {
	return strings.Count(body, `<article class="post">`)
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)
	author := storetest.MakeUser(t, app.store, "leo")
	group := storetest.MakeGroup(t, app.store, "Тестовая группа")
	post := storetest.MakePost(t, app.store, author, group)

	for _, path := range []string{
		"/",
		"/group/testovaya-gruppa/",
		"/profile/leo/",
		postURL(post.ID),
		"/about/author/",
		"/about/tech/",
		"/auth/login/",
		"/auth/signup/",
		"/static/css/style.css",
	} {
		t.Run(path, func(t *testing.T) {
			w := app.get(t, path, nil)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestMissingPagesAre404(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/group/does-not-exist/",
		"/profile/nobody/",
		"/posts/999/",
		"/posts/abc/",
		"/no/such/page/",
	} {
		t.Run(path, func(t *testing.T) {
			w := app.get(t, path, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Contains(t, w.Body.String(), "Page not found")
		})
	}
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	app := newTestApp(t)
	author := storetest.MakeUser(t, app.store, "leo")
	post := storetest.MakePost(t, app.store, author, nil)

	cases := map[string]string{
		"/create/":                 "/auth/login/?next=/create/",
		postURL(post.ID) + "edit/": "/auth/login/?next=" + postURL(post.ID) + "edit/",
		"/follow/":                 "/auth/login/?next=/follow/",
		"/profile/leo/follow/":     "/auth/login/?next=/profile/leo/follow/",
	}
	for path, want := range cases {
		t.Run(path, func(t *testing.T) {
			w := app.get(t, path, nil)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, want, w.Header().Get("Location"))
		})
	}
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	author := storetest.MakeUser(t, app.store, "leo")
	group := storetest.MakeGroup(t, app.store, "cats")

	w := app.get(t, "/create/", author)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cats")

	w = app.postForm(t, "/create/", url.Values{
		"text":  {"a brand new post"},
		"group": {strconv.FormatUint(uint64(group.ID), 10)},
	}, author)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))

	posts, err := app.store.ListPosts(ctx, store.AllPosts())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "a brand new post", posts[0].Text)
	assert.Equal(t, author.ID, posts[0].AuthorID)
	require.NotNil(t, posts[0].GroupID)
	assert.Equal(t, group.ID, *posts[0].GroupID)
	assert.False(t, posts[0].PubDate.IsZero())
}

func TestCreatePostWithImage(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	author := storetest.MakeUser(t, app.store, "leo")

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("text", "with a picture"))
	part, err := mw.CreateFormFile("image", "small.GIF")
	require.NoError(t, err)
	_, err = part.Write(smallGIF)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/create/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := app.do(t, req, author)
	require.Equal(t, http.StatusFound, w.Code)

	posts, err := app.store.ListPosts(ctx, store.AllPosts())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, strings.HasPrefix(posts[0].Image, "posts/"))
	assert.True(t, strings.HasSuffix(posts[0].Image, ".gif"))
	assert.FileExists(t, filepath.Join(app.media.Root(), posts[0].Image))

	w = app.get(t, "/media/"+posts[0].Image, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, smallGIF, w.Body.Bytes())
}

func TestCreatePostInvalidKeepsInput(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	author := storetest.MakeUser(t, app.store, "leo")

	w := app.postForm(t, "/create/", url.Values{"text": {"  "}, "group": {"77"}}, author)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="error"`)

	w = app.postForm(t, "/create/", url.Values{"text": {"kept text"}, "group": {"77"}}, author)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kept text")

	count, err := app.store.CountPosts(ctx, store.AllPosts())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEditPost(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	author := storetest.MakeUser(t, app.store, "author")
	other := storetest.MakeUser(t, app.store, "other")
	post := storetest.MakePost(t, app.store, author, nil)
	detail := postURL(post.ID)

	t.Run("non-author is redirected and the post is unchanged", func(t *testing.T) {
		w := app.get(t, detail+"edit/", other)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detail, w.Header().Get("Location"))

		w = app.postForm(t, detail+"edit/", url.Values{"text": {"hijacked"}}, other)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detail, w.Header().Get("Location"))

		reloaded, err := app.store.PostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.Text, reloaded.Text)
	})

	t.Run("author sees the prefilled form", func(t *testing.T) {
		w := app.get(t, detail+"edit/", author)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), post.Text)
		assert.Contains(t, w.Body.String(), "Edit post")
	})

	t.Run("author saves", func(t *testing.T) {
		w := app.postForm(t, detail+"edit/", url.Values{"text": {"edited text"}}, author)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detail, w.Header().Get("Location"))

		reloaded, err := app.store.PostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited text", reloaded.Text)
		assert.True(t, post.PubDate.Equal(reloaded.PubDate))
	})

	t.Run("unknown post", func(t *testing.T) {
		w := app.get(t, "/posts/999/edit/", author)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	author := storetest.MakeUser(t, app.store, "")
	reader := storetest.MakeUser(t, app.store, "")
	post := storetest.MakePost(t, app.store, author, nil)
	path := postURL(post.ID) + "comment/"

	w := app.postForm(t, path, url.Values{"text": {"first!"}}, reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postURL(post.ID), w.Header().Get("Location"))

	// blank comments are dropped
	w = app.postForm(t, path, url.Values{"text": {" "}}, reader)
	assert.Equal(t, http.StatusFound, w.Code)

	w = app.postForm(t, path, url.Values{"text": {"anonymous"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/"))

	comments, err := app.store.CommentsForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first!", comments[0].Text)
	assert.Equal(t, reader.ID, comments[0].AuthorID)

	w = app.get(t, postURL(post.ID), nil)
	assert.Contains(t, w.Body.String(), "first!")

	w = app.postForm(t, "/posts/999/comment/", url.Values{"text": {"lost"}}, reader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndexIsCachedUntilCleared(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	author := storetest.MakeUser(t, app.store, "")
	post := &models.Post{Text: "soon to be deleted", AuthorID: author.ID}
	require.NoError(t, app.store.CreatePost(ctx, post))

	w := app.get(t, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "soon to be deleted")

	require.NoError(t, app.store.DeletePost(ctx, post.ID))

	w = app.get(t, "/", nil)
	assert.Contains(t, w.Body.String(), "soon to be deleted")

	_, err := app.cache.Clear(ctx)
	require.NoError(t, err)

	w = app.get(t, "/", nil)
	assert.NotContains(t, w.Body.String(), "soon to be deleted")
}

func TestPagination(t *testing.T) {
	app := newTestApp(t)
	author := storetest.MakeUser(t, app.store, "leo")
	group := storetest.MakeGroup(t, app.store, "cats")
	storetest.MakePosts(t, app.store, 13, author, group)

	for _, base := range []string{"/", "/group/cats/", "/profile/leo/"} {
		t.Run(base, func(t *testing.T) {
			assert.Equal(t, 10, countPosts(app.get(t, base, nil).Body.String()))
			assert.Equal(t, 3, countPosts(app.get(t, base+"?page=2", nil).Body.String()))
			assert.Equal(t, 3, countPosts(app.get(t, base+"?page=99", nil).Body.String()))
			assert.Equal(t, 10, countPosts(app.get(t, base+"?page=abc", nil).Body.String()))
		})
	}
}

func TestFollowOverHTTP(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	reader := storetest.MakeUser(t, app.store, "reader")
	writer := storetest.MakeUser(t, app.store, "writer")
	storetest.MakePost(t, app.store, writer, nil)

	w := app.get(t, "/follow/", reader)
	assert.Equal(t, 0, countPosts(w.Body.String()))

	w = app.get(t, "/profile/writer/", reader)
	assert.Contains(t, w.Body.String(), "/profile/writer/follow/")

	w = app.get(t, "/profile/writer/follow/", reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/writer/", w.Header().Get("Location"))
	app.get(t, "/profile/writer/follow/", reader)

	followers, err := app.store.CountFollowers(ctx, writer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)

	w = app.get(t, "/profile/writer/", reader)
	assert.Contains(t, w.Body.String(), "/profile/writer/unfollow/")
	w = app.get(t, "/follow/", reader)
	assert.Equal(t, 1, countPosts(w.Body.String()))

	w = app.get(t, "/profile/writer/unfollow/", reader)
	assert.Equal(t, http.StatusFound, w.Code)
	exists, err := app.store.FollowExists(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	w = app.get(t, "/profile/writer/unfollow/", reader)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.get(t, "/profile/nobody/follow/", reader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoFollowControlOnOwnProfile(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	leo := storetest.MakeUser(t, app.store, "leo")

	w := app.get(t, "/profile/leo/", leo)
	assert.NotContains(t, w.Body.String(), "/profile/leo/follow/")

	w = app.get(t, "/profile/leo/follow/", leo)
	assert.Equal(t, http.StatusFound, w.Code)
	exists, err := app.store.FollowExists(ctx, leo.ID, leo.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSignupLoginLogout(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)

	w := app.postForm(t, "/auth/signup/", url.Values{
		"username":  {"newbie"},
		"password1": {"correct horse"},
		"password2": {"correct horse"},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookie+"=")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")

	user, err := app.store.UserByUsername(ctx, "newbie")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", user.Password)

	w = app.postForm(t, "/auth/signup/", url.Values{
		"username":  {"newbie"},
		"password1": {"correct horse"},
		"password2": {"correct horse"},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")

	w = app.postForm(t, "/auth/login/", url.Values{"username": {"newbie"}, "password": {"wrong password"}}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a correct username and password")

	w = app.postForm(t, "/auth/login/", url.Values{
		"username": {"newbie"},
		"password": {"correct horse"},
		"next":     {"/follow/"},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/follow/", w.Header().Get("Location"))

	w = app.postForm(t, "/auth/login/?next=//evil.example/", url.Values{
		"username": {"newbie"},
		"password": {"correct horse"},
	}, nil)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = app.get(t, "/auth/logout/", user)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
	assert.Contains(t, w.Body.String(), "/auth/login/")
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/create/":             "/create/",
		"/follow/?page=2":      "/follow/?page=2",
		"//evil.example/":      "/",
		"/\\evil.example":      "/",
		"https://evil.example": "/",
		"relative/path":        "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeNext(in), in)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.get(t, "/", nil)

	w := app.get(t, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "one two", truncateWords("one two", 2))
	assert.Equal(t, "one two …", truncateWords("one two three", 2))
}
