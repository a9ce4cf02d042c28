// Package server is the HTTP surface of yatube: routing, page rendering and
// the form handlers.
package server

import (
	"context"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"yatube/auth"
	"yatube/cache"
	"yatube/feed"
	"yatube/media"
	"yatube/middleware"
	"yatube/monitoring"
	"yatube/store"
	"yatube/subscription"
	. "yatube/utils/log"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Store        *store.Store
	PageCache    *cache.PageCache
	Media        media.Store
	Tokens       *auth.Tokens
	PostsPerPage int
	// MediaPath is the URL path a local media store is served under.
	MediaPath string
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

type Server struct {
	store         *store.Store
	subscriptions *subscription.Service
	feeds         *feed.Assembler
	pageCache     *cache.PageCache
	media         media.Store
	tokens        *auth.Tokens
	secureCookies bool

	engine *gin.Engine
}

func New(opts Options) (*Server, error) {
	if opts.Store == nil || opts.PageCache == nil || opts.Media == nil || opts.Tokens == nil {
		return nil, errors.New("server: store, page cache, media and tokens are required")
	}
	subs := subscription.NewService(opts.Store)
	s := &Server{
		store:         opts.Store,
		subscriptions: subs,
		feeds:         feed.NewAssembler(opts.Store, subs, opts.PostsPerPage),
		pageCache:     opts.PageCache,
		media:         opts.Media,
		tokens:        opts.Tokens,
		secureCookies: opts.SecureCookies,
	}

	htmlRender, err := newRenderer(s.templateFuncs())
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HTMLRender = htmlRender
	r.Use(gin.CustomRecovery(s.recovered))
	r.Use(monitoring.Middleware())
	r.Use(middleware.Logger())
	r.Use(middleware.CurrentUser(opts.Tokens, opts.Store))
	s.engine = r

	if err := s.routes(opts); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) routes(opts Options) error {
	r := s.engine

	staticFiles, err := fs.Sub(staticFS, "static")
	if err != nil {
		return errors.Wrap(err, "static files")
	}
	r.StaticFS("/static", http.FS(staticFiles))
	if local, ok := opts.Media.(*media.LocalStore); ok && strings.HasPrefix(opts.MediaPath, "/") {
		r.Static(strings.TrimSuffix(opts.MediaPath, "/"), local.Root())
	}
	r.GET("/metrics", gin.WrapH(monitoring.Handler()))

	r.GET("/", cache.Middleware(s.pageCache, s.indexCacheKey), s.index)
	r.GET("/group/:slug/", s.groupPosts)
	r.GET("/profile/:username/", s.profile)
	r.GET("/posts/:post_id/", s.postDetail)

	authed := r.Group("/", middleware.RequireAuth())
	{
		authed.GET("/create/", s.postCreate)
		authed.POST("/create/", s.postCreate)
		authed.GET("/posts/:post_id/edit/", s.postEdit)
		authed.POST("/posts/:post_id/edit/", s.postEdit)
		authed.POST("/posts/:post_id/comment/", s.addComment)
		authed.GET("/follow/", s.followIndex)
		authed.GET("/profile/:username/follow/", s.profileFollow)
		authed.GET("/profile/:username/unfollow/", s.profileUnfollow)
	}

	r.GET("/about/author/", s.static("about/author"))
	r.GET("/about/tech/", s.static("about/tech"))

	r.GET("/auth/signup/", s.signup)
	r.POST("/auth/signup/", s.signup)
	r.GET("/auth/login/", s.login)
	r.POST("/auth/login/", s.login)
	r.GET("/auth/logout/", s.logout)

	r.NoRoute(s.notFound)
	return nil
}

// indexCacheKey keys the cached global feed by the full request URI and the
// viewer, since the navigation bar differs per user.
func (s *Server) indexCacheKey(c *gin.Context) string {
	viewer := "anonymous"
	if user := middleware.Viewer(c); user != nil {
		viewer = user.Username
	}
	return s.pageCache.Key(c.Request.URL.RequestURI(), viewer)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		Log.WithField("addr", addr).Info("yatube server starts up")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	Log.Info("starting graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	Log.Info("yatube server shutdown")
	return nil
}
