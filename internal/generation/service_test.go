package generation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/insight-journal/internal/extract"
	"github.com/jonathan/insight-journal/internal/llm"
	"github.com/jonathan/insight-journal/internal/pillars"
	"github.com/jonathan/insight-journal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLLMClient is a mock implementation of llm.Client for testing
type MockLLMClient struct {
	GenerateFunc func(ctx context.Context, prompt string, opts llm.GenerateOptions) (*llm.Result, error)
	calls        atomic.Int32
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (*llm.Result, error) {
	m.calls.Add(1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, opts)
	}
	return &llm.Result{}, nil
}

func (m *MockLLMClient) Close() error { return nil }

func bitcoin(t *testing.T) types.Pillar {
	t.Helper()
	p, ok := pillars.Default().Get(types.PillarBitcoin)
	require.True(t, ok)
	return p
}

func TestGenerateInsight_ExtractsSections(t *testing.T) {
	p := bitcoin(t)
	var gotPrompt string
	var gotOpts llm.GenerateOptions
	mock := &MockLLMClient{
		GenerateFunc: func(_ context.Context, prompt string, opts llm.GenerateOptions) (*llm.Result, error) {
			gotPrompt, gotOpts = prompt, opts
			return &llm.Result{
				Text: "SIGNAL: ETF inflows accelerate.\nREFLECTIONS:\nQ1: Yes.\nQ5: Stray answer.\nNARRATIVE: Supply squeeze building.",
				Citations: []types.Citation{
					{URI: "https://farside.co.uk"},
					{URI: ""},
				},
			}, nil
		},
	}
	svc := NewService(mock, pillars.Default())

	got, err := svc.GenerateInsight(context.Background(), types.PillarBitcoin, "Farside")
	require.NoError(t, err)

	assert.True(t, gotOpts.Grounding)
	assert.Contains(t, gotPrompt, `"`+p.Name+`"`)
	assert.Contains(t, gotPrompt, `"Farside"`)
	for i, q := range p.Questions {
		assert.Contains(t, gotPrompt, "Q"+string(rune('1'+i))+": [Detailed answer to: "+q+"]")
	}

	assert.Equal(t, "ETF inflows accelerate.", got.Signal)
	assert.Equal(t, "Supply squeeze building.", got.Narrative)
	require.Len(t, got.Reflections, len(p.Questions))
	assert.Equal(t, "Yes.", got.Reflections[0])
	assert.Equal(t, extract.NoReflection, got.Reflections[1])
	assert.Equal(t, []types.Citation{{URI: "https://farside.co.uk", Title: extract.DefaultCitationTitle}}, got.Sources)
	assert.Equal(t, StatePopulated, svc.Guard().State(InsightSlot(types.PillarBitcoin)).State)
}

func TestGenerateInsight_Failure(t *testing.T) {
	upstream := errors.New("401 unauthorized")
	svc := NewService(&MockLLMClient{
		GenerateFunc: func(context.Context, string, llm.GenerateOptions) (*llm.Result, error) {
			return nil, upstream
		},
	}, pillars.Default())

	_, err := svc.GenerateInsight(context.Background(), types.PillarEthereum, "Nansen")

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, OpInsight, gerr.Op)
	assert.Equal(t, InsightSlot(types.PillarEthereum), gerr.Slot)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, StateFailed, svc.Guard().State(InsightSlot(types.PillarEthereum)).State)
}

func TestGenerateInsight_RejectsNonContentPillar(t *testing.T) {
	mock := &MockLLMClient{}
	svc := NewService(mock, pillars.Default())

	_, err := svc.GenerateInsight(context.Background(), types.PillarNewsletter, "x")
	assert.ErrorIs(t, err, ErrNotContentPillar)
	_, err = svc.GenerateInsight(context.Background(), "defi", "x")
	assert.ErrorIs(t, err, ErrUnknownPillar)
	assert.Zero(t, mock.calls.Load())
}

func TestGenerateInsight_InFlightIssuesNoCall(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	mock := &MockLLMClient{
		GenerateFunc: func(context.Context, string, llm.GenerateOptions) (*llm.Result, error) {
			close(entered)
			<-release
			return &llm.Result{Text: "SIGNAL: s"}, nil
		},
	}
	svc := NewService(mock, pillars.Default())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.GenerateInsight(context.Background(), types.PillarBitcoin, "Farside")
		assert.NoError(t, err)
	}()
	<-entered

	_, err := svc.GenerateInsight(context.Background(), types.PillarBitcoin, "Farside")
	assert.ErrorIs(t, err, ErrInFlight)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), mock.calls.Load())
}

func TestSynthesizeNarrative(t *testing.T) {
	p := bitcoin(t)
	var gotPrompt string
	var gotOpts llm.GenerateOptions
	mock := &MockLLMClient{
		GenerateFunc: func(_ context.Context, prompt string, opts llm.GenerateOptions) (*llm.Result, error) {
			gotPrompt, gotOpts = prompt, opts
			return &llm.Result{Text: "  A measured take.  "}, nil
		},
	}
	svc := NewService(mock, pillars.Default())

	answers := map[string]string{
		p.Questions[1]: "second",
		p.Questions[0]: "first",
		"unrelated":    "ignored",
	}
	got, err := svc.SynthesizeNarrative(context.Background(), types.PillarBitcoin, "ETF inflows", answers)
	require.NoError(t, err)

	assert.Equal(t, "A measured take.", got)
	assert.False(t, gotOpts.Grounding)
	assert.Contains(t, gotPrompt, "Input Signal: ETF inflows")
	assert.Contains(t, gotPrompt, "Contextual Reflections: first | second")
	assert.NotContains(t, gotPrompt, "ignored")
}

func TestSynthesizeNarrative_EmptyResponseUsesPlaceholder(t *testing.T) {
	svc := NewService(&MockLLMClient{}, pillars.Default())

	got, err := svc.SynthesizeNarrative(context.Background(), types.PillarSecurity, "Exploit", nil)
	require.NoError(t, err)
	assert.Equal(t, NarrativeFailed, got)
}

func TestGenerateAll_ReportsPerPillar(t *testing.T) {
	mock := &MockLLMClient{
		GenerateFunc: func(_ context.Context, prompt string, _ llm.GenerateOptions) (*llm.Result, error) {
			if strings.Contains(prompt, "Regulation") {
				return nil, errors.New("quota")
			}
			return &llm.Result{Text: "SIGNAL: ok"}, nil
		},
	}
	catalog := pillars.Default()
	svc := NewService(mock, catalog, WithConcurrency(2))

	var streamed []types.PillarID
	results := svc.GenerateAll(context.Background(), "Messari", func(r BatchResult) {
		streamed = append(streamed, r.PillarID)
	})

	content := catalog.ContentPillars()
	require.Len(t, results, len(content))
	for i, r := range results {
		assert.Equal(t, content[i].ID, r.PillarID)
		if r.PillarID == types.PillarRegulation {
			assert.Error(t, r.Err)
			continue
		}
		assert.NoError(t, r.Err)
		assert.Equal(t, "ok", r.Insight.Signal)
	}
	assert.Equal(t, int32(len(content)), mock.calls.Load())
	assert.Len(t, streamed, len(content))
}

func TestInsightPrompt_NumbersQuestions(t *testing.T) {
	p := types.Pillar{ID: "x", Name: "Test", Questions: []string{"A?", "B?"}}

	prompt, err := InsightPrompt(p, "Src")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Q1: [Detailed answer to: A?]\nQ2: [Detailed answer to: B?]")
	assert.NotContains(t, prompt, "{{.")
}

func TestCall_TimeoutBoundsEachRequest(t *testing.T) {
	mock := &MockLLMClient{GenerateFunc: func(ctx context.Context, _ string, _ llm.GenerateOptions) (*llm.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc := NewService(mock, pillars.Default(), WithTimeout(10*time.Millisecond))

	_, err := svc.GenerateInsight(context.Background(), types.PillarBitcoin, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
	assert.Equal(t, StateFailed, svc.Guard().State(InsightSlot(types.PillarBitcoin)).State)
}
