package types

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// OutputTypeNewsletter is the tag that makes an insight eligible for newsletter curation.
const OutputTypeNewsletter = "Newsletter"

// OutputTypes lists the downstream uses offered when saving an insight.
var OutputTypes = []string{
	OutputTypeNewsletter,
	"Blog Post",
	"Journal Archive",
	"Email Campaign",
}

// Insight is one saved market observation. ID and Date are fixed at creation.
// JSON field names match the archive format written by the browser client.
type Insight struct {
	ID             string            `json:"id" validate:"required"`
	PillarID       PillarID          `json:"pillarId" validate:"required"`
	Date           string            `json:"date" validate:"required"`
	Source         string            `json:"source"`
	Signal         string            `json:"signal" validate:"required"`
	JournalAnswers map[string]string `json:"journalAnswers"`
	Narrative      string            `json:"narrative"`
	OutputTypes    []string          `json:"outputTypes"`
}

// InsightDraft holds the editable fields of an insight before it is saved.
type InsightDraft struct {
	PillarID       PillarID          `json:"pillar_id" validate:"required"`
	Source         string            `json:"source"`
	Signal         string            `json:"signal" validate:"required"`
	JournalAnswers map[string]string `json:"journal_answers"`
	Narrative      string            `json:"narrative"`
	OutputTypes    []string          `json:"output_types"`
}

// NewInsight stamps a draft with a fresh id and creation time.
func NewInsight(draft InsightDraft, now time.Time) Insight {
	answers := make(map[string]string, len(draft.JournalAnswers))
	for q, a := range draft.JournalAnswers {
		answers[q] = a
	}
	outputTypes := append([]string{}, draft.OutputTypes...)

	return Insight{
		ID:             uuid.New().String(),
		PillarID:       draft.PillarID,
		Date:           now.UTC().Format(time.RFC3339Nano),
		Source:         draft.Source,
		Signal:         draft.Signal,
		JournalAnswers: answers,
		Narrative:      draft.Narrative,
		OutputTypes:    outputTypes,
	}
}

// HasOutputType reports whether the insight carries the given tag.
func (i Insight) HasOutputType(tag string) bool {
	return slices.Contains(i.OutputTypes, tag)
}

// InsightCollection is the ordered set of saved insights, newest first.
type InsightCollection []Insight

// Find returns the insight with the given id.
func (c InsightCollection) Find(id string) (Insight, bool) {
	for _, in := range c {
		if in.ID == id {
			return in, true
		}
	}
	return Insight{}, false
}

// GeneratedInsight is the parsed result of an insight generation call.
// Reflections is aligned to the pillar's questions and always has the same length.
type GeneratedInsight struct {
	Signal      string     `json:"signal"`
	Reflections []string   `json:"reflections"`
	Narrative   string     `json:"narrative"`
	Sources     []Citation `json:"sources"`
}

// JournalAnswers pairs reflections with the questions they answer.
func (g GeneratedInsight) JournalAnswers(questions []string) map[string]string {
	answers := make(map[string]string, len(questions))
	for i, q := range questions {
		if i < len(g.Reflections) {
			answers[q] = g.Reflections[i]
		}
	}
	return answers
}
