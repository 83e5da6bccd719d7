package extract

import (
	"strconv"

	"github.com/jonathan/insight-journal/internal/types"
)

// Placeholders used when an insight response lacks a section.
const (
	NoSignal     = "No signal found."
	NoReflection = "No data fetched for this reflection."
	NoNarrative  = "No narrative generated."
)

// Insight parses an insight generation response. The returned Reflections always
// has exactly len(questions) entries, aligned by position with questions.
func Insight(text string, questions []string, citations []types.Citation) types.GeneratedInsight {
	top := scanLabels(text, insightLabelRe, upperName)

	signal, ok := top.get("SIGNAL", false)
	if !ok {
		signal = NoSignal
	}

	narrative, ok := top.get("NARRATIVE", true)
	if !ok {
		narrative = NoNarrative
	}

	reflectionsText, _ := top.get("REFLECTIONS", false)
	qs := scanLabels(reflectionsText, questionLabelRe, questionName)

	reflections := make([]string, len(questions))
	for i := range questions {
		answer, ok := qs.get(strconv.Itoa(i+1), false)
		if !ok {
			answer = NoReflection
		}
		reflections[i] = answer
	}

	return types.GeneratedInsight{
		Signal:      signal,
		Reflections: reflections,
		Narrative:   narrative,
		Sources:     Citations(citations),
	}
}
