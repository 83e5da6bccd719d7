package newsletter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/insight-journal/internal/extract"
	"github.com/jonathan/insight-journal/internal/generation"
	"github.com/jonathan/insight-journal/internal/llm"
	"github.com/jonathan/insight-journal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGenerator records requests and returns canned results.
type mockGenerator struct {
	CallFunc func(ctx context.Context, req generation.Request) (*llm.Result, error)
	requests []generation.Request
}

func (m *mockGenerator) Call(ctx context.Context, req generation.Request) (*llm.Result, error) {
	m.requests = append(m.requests, req)
	if m.CallFunc != nil {
		return m.CallFunc(ctx, req)
	}
	return &llm.Result{}, nil
}

func textResult(text string, citations ...types.Citation) func(context.Context, generation.Request) (*llm.Result, error) {
	return func(context.Context, generation.Request) (*llm.Result, error) {
		return &llm.Result{Text: text, Citations: citations}, nil
	}
}

func fixedAssembler(gen Generator) *Assembler {
	a := NewAssembler(gen)
	a.now = func() time.Time { return time.Date(2024, 7, 4, 8, 0, 0, 0, time.UTC) }
	return a
}

func insight(id string, tags ...string) types.Insight {
	return types.Insight{
		ID:          id,
		PillarID:    types.PillarBitcoin,
		Date:        "2024-07-01T00:00:00Z",
		Signal:      "signal " + id,
		Narrative:   "narrative " + id,
		OutputTypes: tags,
	}
}

func TestEligible(t *testing.T) {
	in := []types.Insight{
		insight("a", "Newsletter"),
		insight("b", "Blog Post"),
		insight("c"),
		insight("d", "Email Campaign", "Newsletter"),
		insight("e", "newsletter"),
	}

	got := Eligible(in)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "d", got[1].ID)
}

func TestEligible_Empty(t *testing.T) {
	assert.Empty(t, Eligible(nil))
	assert.NotNil(t, Eligible(nil))
}

func TestResearch_ParsesSubjectAndBody(t *testing.T) {
	gen := &mockGenerator{CallFunc: textResult(
		"SUBJECT: Liquidity returns\nBODY: Intro.\n\nAnalyst Outlook: cautious.",
		types.Citation{URI: "https://messari.io", Title: "Messari"},
		types.Citation{URI: ""},
	)}
	a := fixedAssembler(gen)

	d, err := a.Research(context.Background(), "Market Pulse", "Messari")
	require.NoError(t, err)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, generation.SlotNewsletterResearch, req.Slot)
	assert.True(t, req.Options.Grounding)
	assert.Contains(t, req.Prompt, `"Market Pulse"`)
	assert.Contains(t, req.Prompt, `"Messari"`)

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "Liquidity returns", d.Title)
	assert.Equal(t, "Market Pulse", d.Type)
	assert.Equal(t, "Intro.\n\nAnalyst Outlook: cautious.", d.Content)
	assert.Equal(t, []types.Citation{{URI: "https://messari.io", Title: "Messari"}}, d.Sources)
	assert.Empty(t, d.InsightIDs)
	assert.NotNil(t, d.InsightIDs)
	assert.Equal(t, "2024-07-04T08:00:00Z", d.Date)
}

func TestResearch_MissingLabelsUsePlaceholders(t *testing.T) {
	a := fixedAssembler(&mockGenerator{CallFunc: textResult("Just some prose.")})

	d, err := a.Research(context.Background(), "Risk Report", "Glassnode")
	require.NoError(t, err)
	assert.Equal(t, extract.NoSubject, d.Title)
	assert.Equal(t, extract.NoBody, d.Content)
	assert.NotNil(t, d.Sources)
}

func TestResearch_FailurePropagates(t *testing.T) {
	boom := &generation.GenerationError{Op: generation.OpResearch, Slot: generation.SlotNewsletterResearch, Cause: errors.New("quota")}
	a := fixedAssembler(&mockGenerator{CallFunc: func(context.Context, generation.Request) (*llm.Result, error) {
		return nil, boom
	}})

	_, err := a.Research(context.Background(), "Market Pulse", "Messari")
	assert.ErrorIs(t, err, boom)
}

func TestCurate_UsesEligibleInsightsVerbatim(t *testing.T) {
	gen := &mockGenerator{CallFunc: textResult(
		"SUBJECT: ignored label\nBODY: kept as is",
		types.Citation{URI: "https://should-not-appear"},
	)}
	a := fixedAssembler(gen)

	d, err := a.Curate(context.Background(), []types.Insight{
		insight("a", "Newsletter"),
		insight("b", "Blog Post"),
		insight("c", "Newsletter"),
	})
	require.NoError(t, err)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, generation.SlotNewsletterCurated, req.Slot)
	assert.False(t, req.Options.Grounding)
	assert.Contains(t, req.Prompt, "- [bitcoin] Signal: signal a\n  Narrative: narrative a")
	assert.Contains(t, req.Prompt, "signal c")
	assert.NotContains(t, req.Prompt, "signal b")

	assert.Equal(t, "SUBJECT: ignored label\nBODY: kept as is", d.Content)
	assert.Empty(t, d.Title)
	assert.Empty(t, d.Sources)
	assert.NotNil(t, d.Sources)
	assert.Equal(t, []string{"a", "c"}, d.InsightIDs)
}

func TestCurate_NoEligibleInsights(t *testing.T) {
	gen := &mockGenerator{}
	a := fixedAssembler(gen)

	_, err := a.Curate(context.Background(), []types.Insight{insight("a", "Blog Post"), insight("b")})
	assert.ErrorIs(t, err, ErrNoEligibleInsights)
	assert.Empty(t, gen.requests)
}

func TestCurate_EmptyResponseUsesPlaceholder(t *testing.T) {
	a := fixedAssembler(&mockGenerator{CallFunc: textResult("   ")})

	d, err := a.Curate(context.Background(), []types.Insight{insight("a", "Newsletter")})
	require.NoError(t, err)
	assert.Equal(t, NoDraft, d.Content)
}

func TestSummary(t *testing.T) {
	got := Summary([]types.Insight{insight("a"), insight("b")})
	assert.Equal(t, "- [bitcoin] Signal: signal a\n  Narrative: narrative a\n\n- [bitcoin] Signal: signal b\n  Narrative: narrative b", got)
}
