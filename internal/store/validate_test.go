package store

import (
	"testing"

	"github.com/jonathan/insight-journal/internal/pillars"
	"github.com/jonathan/insight-journal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInsight(t *testing.T) {
	catalog := pillars.Default()
	btc, ok := catalog.Get(types.PillarBitcoin)
	require.True(t, ok)
	existing := types.InsightCollection{testInsight("taken", types.PillarBitcoin)}

	tests := []struct {
		name      string
		mutate    func(*types.Insight)
		wantField string
	}{
		{name: "valid", mutate: func(*types.Insight) {}},
		{name: "valid with answers", mutate: func(in *types.Insight) {
			in.JournalAnswers = map[string]string{btc.Questions[0]: "yes"}
		}},
		{name: "missing id", mutate: func(in *types.Insight) { in.ID = "" }, wantField: "ID"},
		{name: "missing signal", mutate: func(in *types.Insight) { in.Signal = "" }, wantField: "Signal"},
		{name: "missing pillar", mutate: func(in *types.Insight) { in.PillarID = "" }, wantField: "PillarID"},
		{name: "bad date", mutate: func(in *types.Insight) { in.Date = "yesterday" }, wantField: "Date"},
		{name: "unknown pillar", mutate: func(in *types.Insight) { in.PillarID = "defi" }, wantField: "PillarID"},
		{name: "newsletter pillar", mutate: func(in *types.Insight) { in.PillarID = types.PillarNewsletter }, wantField: "PillarID"},
		{name: "foreign question", mutate: func(in *types.Insight) {
			in.JournalAnswers = map[string]string{"What is the weather?": "sunny"}
		}, wantField: "JournalAnswers"},
		{name: "duplicate id", mutate: func(in *types.Insight) { in.ID = "taken" }, wantField: "ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInsight("new", types.PillarBitcoin)
			tt.mutate(&in)

			err := ValidateInsight(catalog, existing, in)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}
