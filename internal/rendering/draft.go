package rendering

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/jonathan/insight-journal/internal/types"
)

// Format selects an export template.
type Format string

// Supported export formats.
const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// UntitledDraft is shown for drafts whose title the editor has not filled in.
const UntitledDraft = "Untitled Draft"

//go:embed templates/*.tmpl
var templateFiles embed.FS

var templateNames = map[Format]string{
	FormatMarkdown: "draft.md.tmpl",
	FormatText:     "draft.txt.tmpl",
}

// ParseFormat maps a user-supplied name to a Format. Empty means Markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "plain":
		return FormatText, nil
	default:
		return "", &RenderError{Message: fmt.Sprintf("unsupported export format %q", s)}
	}
}

// RenderDraft renders a newsletter draft, including its sources, in the given format.
func RenderDraft(draft types.NewsletterDraft, format Format) (string, error) {
	tmpl, err := parseTemplate(format)
	if err != nil {
		return "", err
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, draft); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}

	return collapseBlankLines(result.String()), nil
}

func parseTemplate(format Format) (*template.Template, error) {
	name, ok := templateNames[format]
	if !ok {
		return nil, &RenderError{Message: fmt.Sprintf("unsupported export format %q", format)}
	}

	content, err := templateFiles.ReadFile("templates/" + name)
	if err != nil {
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", name),
			Cause:   err,
		}
	}

	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"title":     draftTitle,
		"linkText":  EscapeLinkText,
		"linkURL":   EscapeLinkURL,
		"underline": func(s string) string { return strings.Repeat("=", utf8.RuneCountInString(s)) },
		"inc":       func(i int) int { return i + 1 },
	}).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}

	return tmpl, nil
}

func draftTitle(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return UntitledDraft
}

// collapseBlankLines squeezes runs of blank lines left by template conditionals
// and ends the document with a single newline.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}
