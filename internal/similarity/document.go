package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Document is one text taking part in a comparison
type Document struct {
	ID      string
	Content string
}

// Tokenizer splits text into normalized terms
type Tokenizer struct {
	MinLength int  // shortest term kept, in runes
	Lowercase bool // case-fold before splitting
}

// Tokenize splits text on anything that is not a letter, digit, mark or underscore
func (t Tokenizer) Tokenize(text string) []string {
	if t.Lowercase {
		text = strings.ToLower(text)
	}
	f := func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsNumber(c) && !unicode.IsMark(c) && c != '_'
	}
	fields := strings.FieldsFunc(text, f)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if utf8.RuneCountInString(field) >= t.MinLength {
			tokens = append(tokens, field)
		}
	}
	return tokens
}
