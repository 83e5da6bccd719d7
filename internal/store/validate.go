package store

import (
	"errors"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/insight-journal/internal/pillars"
	"github.com/jonathan/insight-journal/internal/types"
)

var validate = validator.New()

// ValidateInsight checks that in can be appended to c: required fields are set,
// the date is ISO-8601, the pillar exists and owns content, answer keys are
// questions of that pillar, and the id is not already used.
func ValidateInsight(catalog *pillars.Catalog, c types.InsightCollection, in types.Insight) error {
	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &ValidationError{Field: fieldErrs[0].Field(), Message: "is required"}
		}
		return &ValidationError{Field: "insight", Message: "failed validation", Cause: err}
	}

	if _, err := time.Parse(time.RFC3339, in.Date); err != nil {
		return &ValidationError{Field: "Date", Message: "must be an ISO-8601 timestamp", Cause: err}
	}

	pillar, ok := catalog.Get(in.PillarID)
	if !ok {
		return &ValidationError{Field: "PillarID", Message: "unknown pillar " + string(in.PillarID)}
	}
	if !pillar.ID.IsContent() {
		return &ValidationError{Field: "PillarID", Message: "the newsletter pillar does not own insights"}
	}

	for question := range in.JournalAnswers {
		if !slices.Contains(pillar.Questions, question) {
			return &ValidationError{Field: "JournalAnswers", Message: "not a question of this pillar: " + question}
		}
	}

	if _, dup := c.Find(in.ID); dup {
		return &ValidationError{Field: "ID", Message: "already used by a saved insight"}
	}
	return nil
}
