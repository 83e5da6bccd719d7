package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInsight_StampsIDAndDate(t *testing.T) {
	now := time.Date(2024, 3, 14, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
	draft := InsightDraft{
		PillarID:       PillarBitcoin,
		Source:         "Farside",
		Signal:         "ETF inflows accelerate",
		JournalAnswers: map[string]string{"Q": "A"},
		OutputTypes:    []string{OutputTypeNewsletter},
	}

	a := NewInsight(draft, now)
	b := NewInsight(draft, now)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "2024-03-14T14:30:00Z", a.Date)
	assert.Equal(t, PillarBitcoin, a.PillarID)
	assert.Equal(t, "A", a.JournalAnswers["Q"])

	// the draft's map and slice are copied
	draft.JournalAnswers["Q"] = "changed"
	draft.OutputTypes[0] = "Blog Post"
	assert.Equal(t, "A", a.JournalAnswers["Q"])
	assert.Equal(t, []string{OutputTypeNewsletter}, a.OutputTypes)
}

func TestOutputTypes(t *testing.T) {
	assert.Equal(t, []string{"Newsletter", "Blog Post", "Journal Archive", "Email Campaign"}, OutputTypes)
}

func TestInsight_HasOutputType(t *testing.T) {
	in := Insight{OutputTypes: []string{"Blog Post", "Newsletter"}}
	assert.True(t, in.HasOutputType(OutputTypeNewsletter))
	assert.False(t, in.HasOutputType("Email Campaign"))
	assert.False(t, Insight{}.HasOutputType(OutputTypeNewsletter))
}

func TestInsight_JSONFieldNames(t *testing.T) {
	in := Insight{
		ID:             "abc",
		PillarID:       PillarEthereum,
		Date:           "2024-01-01T00:00:00Z",
		Source:         "L2Beat",
		Signal:         "Blob fees spike",
		JournalAnswers: map[string]string{"q1": "a1"},
		Narrative:      "n",
		OutputTypes:    []string{"Newsletter"},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	for _, key := range []string{`"pillarId":"ethereum"`, `"journalAnswers":{"q1":"a1"}`, `"outputTypes":["Newsletter"]`} {
		assert.Contains(t, string(data), key)
	}
}

func TestInsightCollection_Find(t *testing.T) {
	c := InsightCollection{{ID: "a"}, {ID: "b"}}

	got, ok := c.Find("b")
	assert.True(t, ok)
	assert.Equal(t, "b", got.ID)

	_, ok = c.Find("missing")
	assert.False(t, ok)
}

func TestGeneratedInsight_JournalAnswers(t *testing.T) {
	g := GeneratedInsight{Reflections: []string{"first", "second"}}
	answers := g.JournalAnswers([]string{"Q1?", "Q2?", "Q3?"})

	assert.Equal(t, map[string]string{"Q1?": "first", "Q2?": "second"}, answers)
}

func TestPillarID_IsContent(t *testing.T) {
	assert.True(t, PillarBitcoin.IsContent())
	assert.False(t, PillarNewsletter.IsContent())
	assert.False(t, PillarID("").IsContent())
}

func TestPillar_Clone(t *testing.T) {
	p := Pillar{ID: PillarSecurity, Questions: []string{"q"}, Sources: []string{"s"}}
	c := p.Clone()
	c.Questions[0] = "changed"
	c.Sources[0] = "changed"

	assert.Equal(t, "q", p.Questions[0])
	assert.Equal(t, "s", p.Sources[0])
}
