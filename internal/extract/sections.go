// Package extract parses the labeled-section text returned by the generation service.
//
// The model is asked to answer under fixed labels (SIGNAL:, REFLECTIONS:, Q1:..QN:,
// NARRATIVE: for insights; SUBJECT:, BODY: for newsletters), each at the start of its
// own line, but nothing guarantees it does. A label is only recognized at the start of
// a line, so "signal:" or "Q3:" inside an answer stays part of that answer. Every
// function here is total: missing or malformed sections resolve to placeholders and
// no input makes them fail.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// A label may be preceded by indentation, a bullet or markdown markers
	// ("**SIGNAL:**", "## NARRATIVE:", "- Q1:"). Emphasis closing the label is
	// consumed with it.
	insightLabelRe    = regexp.MustCompile(`(?im)^[ \t>*_#-]*(SIGNAL|REFLECTIONS|NARRATIVE)[*_]*[ \t]*:[*_]*`)
	newsletterLabelRe = regexp.MustCompile(`(?im)^[ \t>*_#-]*(SUBJECT|BODY)[*_]*[ \t]*:[*_]*`)
	questionLabelRe   = regexp.MustCompile(`(?im)^[ \t>*_#-]*Q[ \t]*(\d+)[*_]*[ \t]*:[*_]*`)
)

// mark is one occurrence of a label token in the text.
type mark struct {
	name  string
	start int // offset of the line holding the label
	end   int // offset just past the label and its closing emphasis
}

// sections indexes every label occurrence in a text, in order of appearance.
type sections struct {
	text  string
	marks []mark
}

func scanLabels(text string, re *regexp.Regexp, name func(string) string) sections {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	marks := make([]mark, 0, len(matches))
	for _, m := range matches {
		marks = append(marks, mark{
			name:  name(text[m[2]:m[3]]),
			start: m[0],
			end:   m[1],
		})
	}
	return sections{text: text, marks: marks}
}

func upperName(s string) string {
	return strings.ToUpper(s)
}

// questionName normalizes "01" and "1" to the same key.
func questionName(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return strconv.Itoa(n)
}

// get returns the body of the first occurrence of the named label. The body ends
// at the next label occurrence of any recognized name, or at the end of the text
// when toEnd is set or no further label exists. Empty bodies count as missing.
func (s sections) get(name string, toEnd bool) (string, bool) {
	for i, m := range s.marks {
		if m.name != name {
			continue
		}
		stop := len(s.text)
		if !toEnd && i+1 < len(s.marks) {
			stop = s.marks[i+1].start
		}
		body := clean(s.text[m.end:stop])
		if body == "" {
			return "", false
		}
		return body, true
	}
	return "", false
}

// clean trims surrounding whitespace. Markdown inside the body is content.
func clean(s string) string {
	return strings.TrimSpace(s)
}
