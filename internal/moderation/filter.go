// Package moderation provides the profanity predicate applied to chat
// messages before they are persisted or broadcast.
package moderation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var badWords = []string{
	"merda", "bosta", "porra", "caralho", "puta", "filhodaputa", "filho da puta", "otario", "otaria", "fdp",
	"vagabundo", "vagabunda", "arrombado", "vaca", "piranha", "fuck", "shit",
	"bitch", "asshole", "motherfucker", "mierda", "gilipollas",
}

// common short forms checked as whole tokens
var knownAcronyms = map[string]bool{
	"fdp": true,
	"vcf": true,
	"vag": true,
	"pqp": true,
}

// leet-speak substitutions applied before matching
var leetMap = map[rune]rune{
	'4': 'a', '@': 'a',
	'3': 'e',
	'1': 'i', '!': 'i', '|': 'i',
	'0': 'o',
	'5': 's', '$': 's',
	'7': 't',
	'2': 'r',
	'9': 'g',
	'8': 'b',
	'6': 'g',
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the text, strips accents, replaces leet-speak
// characters with letters, and collapses everything that is not a
// letter, digit, or space.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s, _, err := transform.String(stripAccents, strings.ToLower(text))
	if err != nil {
		s = strings.ToLower(text)
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if sub, ok := leetMap[r]; ok {
			r = sub
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ContainsBadWords reports whether the message matches the word list
// after normalization, either as a substring, a whole token, a known
// acronym, or the initials of a multi-part entry.
func ContainsBadWords(text string) bool {
	clean := Normalize(text)
	if clean == "" {
		return false
	}

	for _, bad := range badWords {
		if strings.Contains(clean, bad) {
			return true
		}
	}

	words := strings.Fields(clean)
	for _, w := range words {
		if knownAcronyms[w] {
			return true
		}
		for _, bad := range badWords {
			if w == bad {
				return true
			}
		}
	}

	for _, bad := range badWords {
		if isAcronymMatch(clean, bad) {
			return true
		}
	}

	return false
}

// isAcronymMatch checks whether the message contains the initials of a
// multi-part bad word ("filho da puta" -> "fdp"). Entries of four
// characters or fewer are skipped.
func isAcronymMatch(clean, bad string) bool {
	if len(bad) <= 4 {
		return false
	}
	var initials strings.Builder
	for _, part := range strings.FieldsFunc(bad, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	}) {
		initials.WriteByte(part[0])
	}
	// single-letter initials would flag almost any message
	ini := initials.String()
	return len(ini) >= 3 && strings.Contains(clean, ini)
}
