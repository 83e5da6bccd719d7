// Package newsletter assembles newsletter drafts, either from fresh grounded
// research or from saved insights tagged for newsletter use.
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/insight-journal/internal/extract"
	"github.com/jonathan/insight-journal/internal/generation"
	"github.com/jonathan/insight-journal/internal/llm"
	"github.com/jonathan/insight-journal/internal/prompts"
	"github.com/jonathan/insight-journal/internal/types"
)

// NoDraft replaces an empty curated-synthesis response.
const NoDraft = "Failed to generate newsletter draft."

// ErrNoEligibleInsights is returned by Curate when no input insight carries the Newsletter tag.
var ErrNoEligibleInsights = errors.New("no insights tagged for newsletter use")

// Generator issues guarded generation calls.
type Generator interface {
	Call(ctx context.Context, req generation.Request) (*llm.Result, error)
}

// Assembler builds drafts. Drafts are returned to the caller and never persisted.
type Assembler struct {
	gen Generator
	now func() time.Time
}

// NewAssembler creates an Assembler.
func NewAssembler(gen Generator) *Assembler {
	return &Assembler{gen: gen, now: time.Now}
}

// Eligible returns the insights tagged for newsletter use, in their original order.
func Eligible(insights []types.Insight) []types.Insight {
	out := make([]types.Insight, 0, len(insights))
	for _, in := range insights {
		if in.HasOutputType(types.OutputTypeNewsletter) {
			out = append(out, in)
		}
	}
	return out
}

func (a *Assembler) draft() types.NewsletterDraft {
	return types.NewsletterDraft{
		ID:         uuid.New().String(),
		InsightIDs: []string{},
		Sources:    []types.Citation{},
		Date:       a.now().UTC().Format(time.RFC3339),
	}
}

// Research writes a full edition of the given type from grounded search, with
// the title and body taken from the SUBJECT and BODY sections of the response.
func (a *Assembler) Research(ctx context.Context, newsletterType, source string) (types.NewsletterDraft, error) {
	template, err := prompts.Get(prompts.NewsletterFile, prompts.KeyAutomatedNewsletter)
	if err != nil {
		return types.NewsletterDraft{}, err
	}

	res, err := a.gen.Call(ctx, generation.Request{
		Op:   generation.OpResearch,
		Slot: generation.SlotNewsletterResearch,
		Prompt: prompts.Format(template, map[string]string{
			"NewsletterType": newsletterType,
			"SourceName":     source,
		}),
		Options: llm.GenerateOptions{Tier: llm.TierAdvanced, Grounding: true},
	})
	if err != nil {
		return types.NewsletterDraft{}, err
	}

	parsed := extract.Newsletter(res.Text, res.Citations)
	d := a.draft()
	d.Title = parsed.Title
	d.Type = newsletterType
	d.Content = parsed.Content
	d.Sources = parsed.Sources
	return d, nil
}

// Summary renders the per-insight block handed to the curated-synthesis prompt.
func Summary(insights []types.Insight) string {
	blocks := make([]string, len(insights))
	for i, in := range insights {
		blocks[i] = fmt.Sprintf("- [%s] Signal: %s\n  Narrative: %s", in.PillarID, in.Signal, in.Narrative)
	}
	return strings.Join(blocks, "\n\n")
}

// Curate drafts an edition from the eligible insights among insights. The
// response is used verbatim as the content; the title is left for the editor
// and no sources are attached since the call is not grounded.
func (a *Assembler) Curate(ctx context.Context, insights []types.Insight) (types.NewsletterDraft, error) {
	eligible := Eligible(insights)
	if len(eligible) == 0 {
		return types.NewsletterDraft{}, ErrNoEligibleInsights
	}

	template, err := prompts.Get(prompts.NewsletterFile, prompts.KeyCurateNewsletter)
	if err != nil {
		return types.NewsletterDraft{}, err
	}

	res, err := a.gen.Call(ctx, generation.Request{
		Op:      generation.OpCurate,
		Slot:    generation.SlotNewsletterCurated,
		Prompt:  prompts.Format(template, map[string]string{"InsightSummary": Summary(eligible)}),
		Options: llm.GenerateOptions{Tier: llm.TierAdvanced},
	})
	if err != nil {
		return types.NewsletterDraft{}, err
	}

	d := a.draft()
	d.Content = res.Text
	if strings.TrimSpace(d.Content) == "" {
		d.Content = NoDraft
	}
	for _, in := range eligible {
		d.InsightIDs = append(d.InsightIDs, in.ID)
	}
	return d, nil
}
