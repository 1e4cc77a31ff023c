package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxSlugLen = 80

// Slugify converts a title into a URL-safe slug: lowercase, runs of
// non-alphanumerics collapsed into single hyphens, trimmed at 80 chars.
// Uniqueness suffixing is the repository's job.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLen {
		// Cut on a rune boundary so multi-byte titles stay valid UTF-8.
		cut := maxSlugLen
		for cut > 0 && !utf8.RuneStart(slug[cut]) {
			cut--
		}
		slug = strings.TrimRight(slug[:cut], "-")
	}
	if slug == "" {
		slug = "question"
	}
	return slug
}
