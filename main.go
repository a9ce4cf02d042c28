package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"yatube/auth"
	"yatube/cache"
	"yatube/config"
	"yatube/media"
	"yatube/models"
	"yatube/server"
	"yatube/store"
	. "yatube/utils/log"
)

const usage = `usage: yatube <command> [flags]

commands:
  serve         run the web server (default)
  migrate       create or update the database tables
  clearcache    drop every cached page of the global feed
  creategroup   create a group: -title T [-slug S] [-description D]
`

func main() {
	cfg := config.Load()
	// .env files may have set LOG_LEVEL or YATUBE_ENV
	InitLogger()

	command, args := "serve", os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	var err error
	switch command {
	case "serve":
		err = serve(cfg)
	case "migrate":
		err = migrate(cfg)
	case "clearcache":
		err = clearCache(cfg)
	case "creategroup":
		err = createGroup(cfg, args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		Log.WithError(err).WithField("command", command).Fatal("yatube failed")
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := store.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func initMedia(ctx context.Context, cfg *config.Config) (media.Store, error) {
	switch cfg.MediaBackend {
	case config.MediaLocal:
		return media.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	case config.MediaMinio:
		return media.NewMinioStore(ctx, media.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
	}
	return nil, errors.Errorf("unknown media backend %q", cfg.MediaBackend)
}

func serve(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := initDB(cfg)
	if err != nil {
		return err
	}
	rdb := initRedis(cfg)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// pages are served uncached until redis comes back
		Log.WithError(err).Warn("redis is unreachable")
	}
	mediaStore, err := initMedia(ctx, cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Store:         store.New(db),
		PageCache:     cache.NewPageCache(rdb, cache.IndexPagePrefix, cfg.CacheTTL),
		Media:         mediaStore,
		Tokens:        auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL),
		PostsPerPage:  cfg.PostsPerPage,
		MediaPath:     cfg.MediaURL,
		SecureCookies: cfg.IsProd(),
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx, cfg.HTTPAddr)
}

func migrate(cfg *config.Config) error {
	if _, err := initDB(cfg); err != nil {
		return err
	}
	Log.WithField("driver", cfg.DBDriver).Info("database migrated")
	return nil
}

func clearCache(cfg *config.Config) error {
	rdb := initRedis(cfg)
	defer rdb.Close()

	removed, err := cache.NewPageCache(rdb, cache.IndexPagePrefix, cfg.CacheTTL).Clear(context.Background())
	if err != nil {
		return err
	}
	Log.WithField("removed", removed).Info("page cache cleared")
	return nil
}

func createGroup(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("creategroup", flag.ContinueOnError)
	title := fs.String("title", "", "group title (required)")
	slug := fs.String("slug", "", "group slug, derived from the title when empty")
	description := fs.String("description", "", "group description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return errors.New("creategroup: -title is required")
	}

	db, err := initDB(cfg)
	if err != nil {
		return err
	}
	group := &models.Group{Title: *title, Slug: *slug, Description: *description}
	if err := store.New(db).CreateGroup(context.Background(), group); err != nil {
		return err
	}
	Log.WithField("id", group.ID).WithField("slug", group.Slug).Info("group created")
	return nil
}
