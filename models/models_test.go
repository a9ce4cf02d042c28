package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupSlugFromTitle(t *testing.T) {
	g := &Group{Title: "Тестовая группа"}
	require.NoError(t, g.BeforeSave(nil))
	assert.Equal(t, "testovaya-gruppa", g.Slug)
	assert.Equal(t, "Тестовая группа", g.String())
}

func TestGroupExplicitSlugIsTransliterated(t *testing.T) {
	g := &Group{Title: "ignored", Slug: "Мой Слаг"}
	require.NoError(t, g.BeforeSave(nil))
	assert.Equal(t, "moj-slag", g.Slug)
}

func TestGroupSlugIsTruncated(t *testing.T) {
	g := &Group{Title: strings.Repeat("щ", 60)}
	require.NoError(t, g.BeforeSave(nil))
	assert.Len(t, g.Slug, GroupSlugMaxLength)
}

func TestGroupEmptySlug(t *testing.T) {
	g := &Group{Title: "???"}
	assert.ErrorIs(t, g.BeforeSave(nil), ErrEmptySlug)
}

func TestPostString(t *testing.T) {
	assert.Equal(t, "Короткий", Post{Text: "Короткий"}.String())
	assert.Equal(t, "Очень длинный т", Post{Text: "Очень длинный текст поста"}.String())
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Leo Tolstoy", User{Username: "leo", FirstName: "Leo", LastName: "Tolstoy"}.FullName())
	assert.Equal(t, "leo", User{Username: "leo"}.FullName())
}
