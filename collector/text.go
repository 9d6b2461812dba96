package collector

import (
	"regexp"
	"strings"
)

// DefaultTitle is used when a message yields no usable title text.
const DefaultTitle = "Untitled"

const maxTitleLength = 100

var (
	// Hashtags are captured case-sensitively: the token after '#' drawn from
	// Latin and Cyrillic letters, digits and underscore.
	hashtagRe = regexp.MustCompile(`#([0-9A-Za-zА-Яа-яЁё_]+)`)
	urlRe     = regexp.MustCompile(`https?://\S+`)
)

// ExtractHashtags returns the message's hashtags with case preserved,
// deduplicated keeping the first occurrence order.
func ExtractHashtags(text string) []string {
	var tags []string
	seen := map[string]bool{}
	for _, match := range hashtagRe.FindAllStringSubmatch(text, -1) {
		tag := match[1]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// DeriveTitle builds a short title from the message text: hashtags and URLs
// stripped, whitespace collapsed, cut at the first sentence-ending
// punctuation or 100 characters, whichever comes first. Falls back to
// DefaultTitle when nothing is left.
func DeriveTitle(text string) string {
	cleaned := hashtagRe.ReplaceAllString(text, "")
	cleaned = urlRe.ReplaceAllString(cleaned, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	runes := []rune(cleaned)
	for i, r := range runes {
		if r == '.' || r == '!' || r == '?' {
			runes = runes[:i]
			break
		}
	}
	if len(runes) > maxTitleLength {
		runes = runes[:maxTitleLength]
	}
	title := strings.TrimSpace(string(runes))
	if title == "" {
		return DefaultTitle
	}
	return title
}
