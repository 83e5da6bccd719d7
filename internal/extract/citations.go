package extract

import (
	"strings"

	"github.com/jonathan/insight-journal/internal/types"
)

// DefaultCitationTitle labels a citation the service returned without a title.
const DefaultCitationTitle = "Source Link"

// Citations drops citations without a URI and fills in missing titles.
// The result is never nil so it serializes as an empty list.
func Citations(in []types.Citation) []types.Citation {
	out := make([]types.Citation, 0, len(in))
	for _, c := range in {
		uri := strings.TrimSpace(c.URI)
		if uri == "" {
			continue
		}
		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = DefaultCitationTitle
		}
		out = append(out, types.Citation{URI: uri, Title: title})
	}
	return out
}
