package quote

import (
	"strings"

	"github.com/timmy/sentencebot/internal/domain"
)

// titleSeparator separates words in background image titles ("maria-silva").
const titleSeparator = "-"

// DeriveAuthor turns a background title into the caption author,
// replacing every "-" with a space. Titles without separators are returned unchanged.
// Parameters:
//   - entry: selected background image.
// Returns:
//   - string: human-readable author name.
func DeriveAuthor(entry domain.ImageEntry) string {
	title := entry.Title
	if title == "" || !strings.Contains(title, titleSeparator) {
		return title
	}
	return strings.ReplaceAll(title, titleSeparator, " ")
}

// Caption formats the attribution line drawn under the sentence.
func Caption(author string) string {
	return "- " + author
}
