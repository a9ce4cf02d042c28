// Package store is the Content Store: gorm-backed persistence for users,
// groups, posts, comments and follow edges.
package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yatube/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username is already taken")
	ErrSlugTaken     = errors.New("group slug is already taken")
)

// GormTransaction is the callback function used during db.Transaction in Gorm.
type GormTransaction func(tx *gorm.DB) error

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for callers composing their own
// queries, such as tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Open connects to one of the supported SQL backends.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driver)
	}
	return db, nil
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(models.All()...), "auto migrate")
}

// notFound turns gorm's missing-row error into ErrNotFound.
func notFound(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrapf(ErrNotFound, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}
