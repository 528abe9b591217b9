// Package normalize provides field normalization functions for lead matching
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopWords are generic lodging words that carry no identity signal.
// They are only dropped when enough tokens remain to identify the property.
var stopWords = map[string]bool{
	"hotel":         true,
	"pension":       true,
	"ferienwohnung": true,
	"ferienhaus":    true,
	"apartment":     true,
	"villa":         true,
	"resort":        true,
}

// minTokensForStopWords is the token count below which stop words are kept.
// Dropping them from a two-word name like "Ferienhaus Waldblick" would leave
// almost nothing to match on.
const minTokensForStopWords = 3

var (
	diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	whitespaceRe      = regexp.MustCompile(`\s+`)
	bookingSlugRe     = regexp.MustCompile(`booking\.com/hotel/[^/]+/([^.?/]+)`)
)

// Text normalizes a property or entity name for fuzzy comparison:
// diacritics stripped, lowercased, punctuation dropped, whitespace
// collapsed, and generic lodging words removed when at least
// minTokensForStopWords tokens are present. Idempotent.
func Text(s string) string {
	s = StripDiacritics(s)
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	if len(tokens) >= minTokensForStopWords {
		kept := tokens[:0]
		for _, t := range tokens {
			if !stopWords[t] {
				kept = append(kept, t)
			}
		}
		// If every token was generic, keep the original tokens.
		if len(kept) > 0 {
			tokens = kept
		}
	}

	return strings.Join(tokens, " ")
}

// Tokens returns the normalized tokens of a name.
func Tokens(s string) []string {
	n := Text(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// SearchQuery derives a free-text search query from a name: the first
// max normalized tokens joined with spaces.
func SearchQuery(s string, max int) string {
	tokens := Tokens(s)
	if len(tokens) > max {
		tokens = tokens[:max]
	}
	return strings.Join(tokens, " ")
}

// StripDiacritics removes combining marks, so "Sunčana" becomes "Suncana".
func StripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Phone normalizes a phone number: digits kept, a single leading "+"
// preserved, and a "+" prepended when a bare number is long enough to
// already carry a country code. Idempotent.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	plus := strings.HasPrefix(s, "+")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if plus || len(digits) > 10 {
		return "+" + digits
	}
	return digits
}

// Domain extracts the lowercased domain part of an email address.
// Returns "" when the input has no "@".
func Domain(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BookingSlug extracts the property slug from a booking.com hotel URL,
// e.g. ".../hotel/hr/villa-suncana.de.html" yields "villa-suncana".
// Any other URL is lowercased and trimmed so equality still works as a
// last-resort comparison.
func BookingSlug(url string) string {
	url = strings.ToLower(strings.TrimSpace(url))
	if url == "" {
		return ""
	}
	if m := bookingSlugRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return url
}

// Whitespace collapses runs of whitespace into single spaces.
func Whitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
