package domain

import (
	"strings"
	"unicode"
)

// FriendlyName turns an identifier into a sentence-case label:
// "MY_FIELD_ID" and "myFieldId" both become "My field id". Identifiers
// written entirely in upper case are treated as one lower-case word run.
func FriendlyName(text string) string {
	if text == strings.ToUpper(text) {
		text = strings.ToLower(text)
	}
	words := splitWords(text)
	if len(words) == 0 {
		return ""
	}
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	first := []rune(words[0])
	first[0] = unicode.ToUpper(first[0])
	words[0] = string(first)
	return strings.Join(words, " ")
}

// splitWords breaks text at separators, lower-to-upper case changes,
// acronym ends ("HTMLParser" -> "HTML", "Parser") and letter/digit changes.
func splitWords(text string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	runes := []rune(text)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(r):
				flush()
			case unicode.IsUpper(prev) && unicode.IsUpper(r) &&
				i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			case unicode.IsDigit(prev) != unicode.IsDigit(r):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
