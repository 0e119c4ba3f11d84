package modifiers

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Capitalize uppercases the first character.
func Capitalize(text string) string {
	r, size := utf8.DecodeRuneInString(text)
	if size == 0 {
		return text
	}
	return string(unicode.ToUpper(r)) + text[size:]
}

// CapitalizeAll uppercases the first character of every whitespace-separated word.
// Whitespace is kept as is.
func CapitalizeAll(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	atWordStart := true
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			atWordStart = true
		case atWordStart:
			r = unicode.ToUpper(r)
			atWordStart = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// lastTwo returns the last byte, lowercased, and whether the byte before it is a vowel.
// hasPrev is false for one-byte strings.
func lastTwo(text string) (last byte, prevVowel, hasPrev bool) {
	last = text[len(text)-1]
	if last >= 'A' && last <= 'Z' {
		last += 'a' - 'A'
	}
	if len(text) < 2 {
		return last, false, false
	}
	return last, isVowel(text[len(text)-2]), true
}

// Pluralize applies suffix heuristics to the whole string:
// s/h/x take "es", consonant+y becomes "ies", everything else takes "s".
func Pluralize(text string) string {
	if text == "" {
		return text
	}
	last, prevVowel, hasPrev := lastTwo(text)
	switch last {
	case 's', 'h', 'x':
		return text + "es"
	case 'y':
		if hasPrev && !prevVowel {
			return text[:len(text)-1] + "ies"
		}
		return text + "s"
	default:
		return text + "s"
	}
}

// FirstS pluralizes the first whitespace-separated word and leaves the rest untouched.
func FirstS(text string) string {
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return Pluralize(text)
	}
	return Pluralize(text[:idx]) + text[idx:]
}

// Article prefixes "an " when the first character is an ASCII vowel, "a " otherwise.
// There is no dictionary of exceptions ("an hour", "a unicorn").
func Article(text string) string {
	if text != "" && isVowel(text[0]) {
		return "an " + text
	}
	return "a " + text
}

// PastTense appends "ed", or "d" after a final "e" or vowel+"y",
// and turns consonant+"y" into "ied".
func PastTense(text string) string {
	if text == "" {
		return text
	}
	last, prevVowel, hasPrev := lastTwo(text)
	switch last {
	case 'e':
		return text + "d"
	case 'y':
		if hasPrev && !prevVowel {
			return text[:len(text)-1] + "ied"
		}
		if hasPrev {
			return text + "d"
		}
		return text + "ed"
	default:
		return text + "ed"
	}
}

// SpaceBefore prepends a space to non-empty text.
func SpaceBefore(text string) string {
	if text == "" {
		return text
	}
	return " " + text
}

// SpaceAfter appends a space to non-empty text.
func SpaceAfter(text string) string {
	if text == "" {
		return text
	}
	return text + " "
}

// InQuotes wraps text in double quotes.
func InQuotes(text string) string {
	return `"` + text + `"`
}

// Comma appends a comma unless the text already ends in punctuation.
func Comma(text string) string {
	if text == "" {
		return text
	}
	switch text[len(text)-1] {
	case ',', '.', '!', '?':
		return text
	}
	return text + ","
}

// Replace substitutes every occurrence of params[0] with params[1] (empty when omitted).
func Replace(text string, params []string) string {
	if len(params) == 0 || params[0] == "" {
		return text
	}
	with := ""
	if len(params) > 1 {
		with = params[1]
	}
	return strings.ReplaceAll(text, params[0], with)
}
