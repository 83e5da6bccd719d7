package rendering

import "strings"

// EscapeLinkText escapes characters that would end a Markdown link label early.
// Special characters: \ [ ]
func EscapeLinkText(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + 8)

	for _, r := range text {
		switch r {
		case '\\', '[', ']':
			result.WriteRune('\\')
			result.WriteRune(r)
		case '\n', '\r':
			result.WriteRune(' ')
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// EscapeLinkURL percent-encodes characters that would end a Markdown link destination.
func EscapeLinkURL(uri string) string {
	return strings.NewReplacer(
		" ", "%20",
		"(", "%28",
		")", "%29",
		"<", "%3C",
		">", "%3E",
	).Replace(uri)
}
