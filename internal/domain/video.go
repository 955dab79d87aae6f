package domain

import "strings"

const shortDescriptionLength = 200

// Video is a single DevByte as shown to observers.
type Video struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Updated     string `json:"updated"`
	Thumbnail   string `json:"thumbnail"`
}

// ShortDescription returns the description cut to at most 200 characters
// at a word boundary, suffixed with "..." when anything was dropped.
func (v Video) ShortDescription() string {
	return smartTruncate(v.Description, shortDescriptionLength)
}

func smartTruncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}

	cut := string(runes[:length])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 && !isSpace(runes[length]) {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \t\n") + "..."
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}
