package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"yatube/translit"
)

const (
	GroupTitleMaxLength = 200
	GroupSlugMaxLength  = 100
	postPreviewLength   = 15
)

var ErrEmptySlug = errors.New("group slug is empty after transliteration")

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"type:varchar(150);uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	FirstName string `gorm:"type:varchar(150)"`
	LastName  string `gorm:"type:varchar(150)"`
	Email     string
	CreatedAt time.Time
}

// FullName falls back to the username when no name was given at signup.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"type:varchar(200);not null"`
	Slug        string `gorm:"type:varchar(100);uniqueIndex"`
	Description string `gorm:"type:text"`
}

func (g Group) String() string {
	return g.Title
}

// BeforeSave derives the slug from the title when none was supplied; a
// supplied slug is itself transliterated. Either way it is cut to
// GroupSlugMaxLength characters.
func (g *Group) BeforeSave(tx *gorm.DB) error {
	source := g.Slug
	if source == "" {
		source = g.Title
	}
	g.Slug = translit.SlugifyMax(source, GroupSlugMaxLength)
	if g.Slug == "" {
		return ErrEmptySlug
	}
	return nil
}

type Post struct {
	ID       uint      `gorm:"primaryKey"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	GroupID  *uint     `gorm:"index"`
	Group    *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Image    string    // object key in the media store, "posts/<uuid>.<ext>"
}

func (p Post) String() string {
	runes := []rune(p.Text)
	if len(runes) > postPreviewLength {
		runes = runes[:postPreviewLength]
	}
	return string(runes)
}

type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	PostID   uint      `gorm:"not null;index"`
	Post     Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorID uint      `gorm:"not null;index"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Text     string    `gorm:"type:text;not null"`
	Created  time.Time `gorm:"autoCreateTime"`
}

// Follow is the edge "User follows Author". Nothing stops duplicate edges.
type Follow struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;index"`
	User      User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthorID  uint `gorm:"not null;index"`
	Author    User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Group{}, &Post{}, &Comment{}, &Follow{}}
}
