// Package validation checks translated strings against content rules.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule inspects the lowercased text of a string.
type Rule interface {
	Matches(text string) bool
	Explain(text string) string
}

// SequenceRule forbids a sequence anywhere in the text, ignoring case.
type SequenceRule struct {
	sequence string
}

func NewSequenceRule(sequence string) SequenceRule {
	return SequenceRule{sequence: sequence}
}

func (r SequenceRule) Matches(text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(r.sequence))
}

func (r SequenceRule) Explain(_ string) string {
	return fmt.Sprintf("found forbidden sequence [%s]", r.sequence)
}

var emailWord = regexp.MustCompile(`(\S*)\s+(e-mails?|mails?)\b`)

// mailContexts are the words after which "mail" is preferred over "e-mail".
var mailContexts = map[string]bool{
	"adresse":  true,
	"adresses": true,
	"boîte":    true,
	"boite":    true,
}

// FrenchEmailRule expects "e-mail", except after words like "adresse" where "mail" is used.
type FrenchEmailRule struct{}

func (r FrenchEmailRule) Matches(text string) bool {
	_, _, found := r.conflict(text)

	return found
}

func (r FrenchEmailRule) Explain(text string) string {
	expected, actual, found := r.conflict(text)
	if !found {
		return "no e-mail wording issue"
	}

	return fmt.Sprintf("found \"%s\" but expected \"%s\"", actual, expected)
}

// conflict returns the first word form that differs from the expected one.
func (r FrenchEmailRule) conflict(text string) (string, string, bool) {
	for _, m := range emailWord.FindAllStringSubmatch(text, -1) {
		previous := elided(m[1])
		previous = strings.TrimFunc(previous, func(c rune) bool {
			return !unicode.IsLetter(c)
		})

		expected := "e-mail"
		if mailContexts[previous] {
			expected = "mail"
		}

		if strings.TrimSuffix(m[2], "s") != expected {
			return expected, m[2], true
		}
	}

	return "", "", false
}

// elided drops an elided article like the one in "l'adresse". Android escapes the apostrophe as \'.
func elided(word string) string {
	i := strings.LastIndexAny(word, "'’")
	if i < 0 {
		return word
	}
	_, size := utf8.DecodeRuneInString(word[i:])

	return word[i+size:]
}
