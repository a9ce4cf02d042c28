// Package translit turns arbitrary titles into URL-safe ASCII slugs.
// Cyrillic is transliterated with the GOST-like table used by the group
// admin forms; other Latin letters lose their diacritics.
package translit

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "yi", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

var (
	ampersand  = regexp.MustCompile(`&amp;|&`)
	separators = regexp.MustCompile(`[-\s]+`)
)

// Translify replaces every Cyrillic letter of s with its Latin spelling.
// Upper case letters are capitalised on output.
func Translify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		lower := unicode.ToLower(r)
		latin, ok := cyrillic[lower]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if lower != r && latin != "" {
			latin = strings.ToUpper(latin[:1]) + latin[1:]
		}
		b.WriteString(latin)
	}
	return b.String()
}

// Slugify lowercases s, transliterates it and keeps only [a-z0-9_-].
// Runs of whitespace and hyphens collapse to a single hyphen.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = ampersand.ReplaceAllString(s, " and ")
	s = separators.ReplaceAllString(s, "-")
	s = Translify(s)
	s = foldDiacritics(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return separators.ReplaceAllString(strings.Trim(b.String(), "-_"), "-")
}

// SlugifyMax is Slugify truncated to at most max characters.
func SlugifyMax(s string, max int) string {
	slug := Slugify(s)
	// slug is pure ASCII, bytes and characters are the same thing
	if max >= 0 && len(slug) > max {
		slug = slug[:max]
	}
	return slug
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
