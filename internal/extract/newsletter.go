package extract

import "github.com/jonathan/insight-journal/internal/types"

// Placeholders used when a newsletter response lacks a section.
const (
	NoSubject = "Market Intelligence Update"
	NoBody    = "No content generated."
)

// Newsletter parses a newsletter research response into a title and body.
func Newsletter(text string, citations []types.Citation) types.GeneratedNewsletter {
	s := scanLabels(text, newsletterLabelRe, upperName)

	title, ok := s.get("SUBJECT", false)
	if !ok {
		title = NoSubject
	}
	body, ok := s.get("BODY", true)
	if !ok {
		body = NoBody
	}

	return types.GeneratedNewsletter{
		Title:   title,
		Content: body,
		Sources: Citations(citations),
	}
}
