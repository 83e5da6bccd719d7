package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/insight-journal/internal/generation"
	"github.com/jonathan/insight-journal/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintGeneratedInsight(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	pillar := types.Pillar{
		ID:        types.PillarBitcoin,
		Name:      "Bitcoin (BTC) Deep Dive",
		Questions: []string{"Are ETF flows positive?", "Is supply on exchanges falling?"},
	}
	g := &types.GeneratedInsight{
		Signal:      "ETF inflows accelerate.",
		Reflections: []string{"Yes.", "No data fetched for this reflection."},
		Narrative:   "Supply squeeze building.",
		Sources:     []types.Citation{{URI: "https://farside.co.uk", Title: "Farside"}},
	}

	p.PrintGeneratedInsight(pillar, g)
	output := buf.String()

	assert.Contains(t, output, "BITCOIN (BTC) DEEP DIVE")
	assert.Contains(t, output, "ETF inflows accelerate.")
	assert.Contains(t, output, "Q1 Are ETF flows positive?")
	assert.Contains(t, output, "Q2")
	assert.Contains(t, output, "Supply squeeze building.")
	assert.Contains(t, output, "Farside")
}

func TestPrintGeneratedInsight_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintGeneratedInsight(types.Pillar{}, nil)
	assert.Empty(t, buf.String())
}

func TestPrintInsight(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintInsight(&types.Insight{
		ID:          "abc",
		PillarID:    types.PillarEthereum,
		Date:        "2024-05-01T12:00:00Z",
		Source:      "DeFiLlama",
		Signal:      "L2 fees collapse",
		OutputTypes: []string{"Newsletter", "Email Campaign"},
	})
	output := buf.String()

	assert.Contains(t, output, "SAVED INSIGHT")
	assert.Contains(t, output, "ethereum")
	assert.Contains(t, output, "DeFiLlama")
	assert.Contains(t, output, "Newsletter, Email Campaign")
	assert.NotContains(t, output, "Narrative:")
}

func TestPrintDraft(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDraft(&types.NewsletterDraft{
		Content:    strings.Repeat("line\n", 8),
		InsightIDs: []string{"a", "b"},
	})
	output := buf.String()

	assert.Contains(t, output, "NEWSLETTER DRAFT")
	assert.Contains(t, output, "(untitled)")
	assert.Contains(t, output, "Insights: 2")
	assert.Contains(t, output, "... and 3 more lines")
}

func TestPrintBatchResults(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBatchResults([]generation.BatchResult{
		{PillarID: types.PillarBitcoin, Insight: types.GeneratedInsight{Signal: "ETF inflows"}},
		{PillarID: types.PillarEthereum, Err: errors.New("quota exceeded")},
	})
	output := buf.String()

	assert.Contains(t, output, "✓ bitcoin")
	assert.Contains(t, output, "✗ ethereum")
	assert.Contains(t, output, "quota exceeded")
	assert.Contains(t, output, "1 generated, 1 failed")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
}
