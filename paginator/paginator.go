// Package paginator slices ordered result sets into fixed-size pages.
//
// A requested page number never produces an error: anything that is not a
// number resolves to the first page and numbers outside [1, NumPages] are
// clamped to the nearest valid page.
package paginator

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Page describes one window of a result set.
type Page struct {
	Number   int
	NumPages int
	PerPage  int
	Count    int64
}

// New resolves rawPage against a result set of count items.
func New(count int64, perPage int, rawPage string) Page {
	if perPage < 1 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}

	numPages := int((count + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		// an empty result set still has one (empty) page
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(rawPage))
	switch {
	case err != nil, number < 1:
		number = 1
	case number > numPages:
		number = numPages
	}

	return Page{
		Number:   number,
		NumPages: numPages,
		PerPage:  perPage,
		Count:    count,
	}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) Limit() int {
	return p.PerPage
}

// Len is the number of items that fall inside the window.
func (p Page) Len() int {
	remaining := p.Count - int64(p.Offset())
	if remaining <= 0 {
		return 0
	}
	if remaining > int64(p.PerPage) {
		return p.PerPage
	}
	return int(remaining)
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// PageRange lists every page number, 1 through NumPages.
func (p Page) PageRange() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// Slice returns the window of items selected by rawPage.
func Slice[T any](items []T, perPage int, rawPage string) ([]T, Page) {
	page := New(int64(len(items)), perPage, rawPage)
	start := page.Offset()
	return items[start : start+page.Len()], page
}

// Scope limits a gorm query to the rows of the page.
func Scope(p Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit())
	}
}
