// Package quote recognizes quoted sentences in chat messages and derives
// the attribution caption printed under them.
package quote

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	// MaxSentenceLength is the longest normalized sentence, in runes, including its quotes.
	MaxSentenceLength = 200

	// truncationMarker closes a sentence that was cut to MaxSentenceLength.
	truncationMarker = `..."`
)

// ErrNotAQuote reports that a message is not a quote candidate. It is the
// normal "no reply" outcome, not a failure.
var ErrNotAQuote = errors.New("message is not a quote")

// quoteChars are the characters accepted at either end of a quote candidate.
var quoteChars = []rune{'"', '“', '”', '\''}

// Sentence is a normalized quote: wrapped in straight double quotes and at most
// MaxSentenceLength runes long.
type Sentence string

// String returns the sentence text.
func (s Sentence) String() string {
	return string(s)
}

// Len returns the sentence length in runes.
func (s Sentence) Len() int {
	return utf8.RuneCountInString(string(s))
}

// IsQuoteChar reports whether r may open or close a quote candidate.
func IsQuoteChar(r rune) bool {
	for _, c := range quoteChars {
		if r == c {
			return true
		}
	}
	return false
}

// Extract validates raw and normalizes it into a Sentence.
// The first and last runes must each belong to the quote set; they do not have
// to be the same character. A single quote character yields the empty sentence `""`.
// Parameters:
//   - raw: message body as received.
// Returns:
//   - Sentence: normalized sentence.
//   - error: ErrNotAQuote when raw is not a quote candidate.
func Extract(raw string) (Sentence, error) {
	if raw == "" {
		return "", ErrNotAQuote
	}

	first, firstSize := utf8.DecodeRuneInString(raw)
	last, lastSize := utf8.DecodeLastRuneInString(raw)
	if !IsQuoteChar(first) || !IsQuoteChar(last) {
		return "", ErrNotAQuote
	}

	inner := ""
	if firstSize < len(raw) {
		inner = raw[firstSize : len(raw)-lastSize]
	}

	return Normalize(inner), nil
}

// Normalize wraps text in straight double quotes and truncates the result to
// MaxSentenceLength runes, ending truncated sentences with `..."`.
func Normalize(text string) Sentence {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte('"')
	b.WriteString(text)
	b.WriteByte('"')
	return truncate(b.String())
}

func truncate(s string) Sentence {
	if utf8.RuneCountInString(s) <= MaxSentenceLength {
		return Sentence(s)
	}
	keep := MaxSentenceLength - utf8.RuneCountInString(truncationMarker)
	runes := []rune(s)
	return Sentence(string(runes[:keep]) + truncationMarker)
}
