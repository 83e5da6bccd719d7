// Package generation runs grounded research and narrative synthesis against the
// external AI service and turns the responses into draft values.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/insight-journal/internal/extract"
	"github.com/jonathan/insight-journal/internal/llm"
	"github.com/jonathan/insight-journal/internal/logging"
	"github.com/jonathan/insight-journal/internal/metrics"
	"github.com/jonathan/insight-journal/internal/pillars"
	"github.com/jonathan/insight-journal/internal/prompts"
	"github.com/jonathan/insight-journal/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NarrativeFailed replaces an empty narrative synthesis response.
const NarrativeFailed = "Failed to generate narrative."

// Operation names used in errors, logs and metrics.
const (
	OpInsight   = "insight"
	OpNarrative = "narrative"
	OpResearch  = "newsletter_research"
	OpCurate    = "newsletter_curate"
)

const defaultConcurrency = 3

// Request is a single guarded call to the AI service.
type Request struct {
	Op      string
	Slot    string
	Prompt  string
	Options llm.GenerateOptions
}

// Service coordinates prompt building, guarded calls and extraction.
type Service struct {
	client      llm.Client
	catalog     *pillars.Catalog
	guard       *Guard
	logger      *zap.Logger
	concurrency int
	timeout     time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(l) }
}

// WithGuard shares a slot guard between services.
func WithGuard(g *Guard) Option {
	return func(s *Service) { s.guard = g }
}

// WithConcurrency bounds the number of pillars generated at once by GenerateAll.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithTimeout bounds each external call. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a generation service.
func NewService(client llm.Client, catalog *pillars.Catalog, opts ...Option) *Service {
	s := &Service{
		client:      client,
		catalog:     catalog,
		guard:       NewGuard(),
		logger:      zap.NewNop(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Guard returns the slot guard used by the service.
func (s *Service) Guard() *Guard {
	return s.guard
}

// Call issues req through the slot guard. ErrInFlight is returned unwrapped;
// any service failure is returned as *GenerationError.
func (s *Service) Call(ctx context.Context, req Request) (*llm.Result, error) {
	var result *llm.Result
	start := time.Now()

	err := s.guard.Run(ctx, req.Slot, func(ctx context.Context) error {
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		res, err := s.client.Generate(ctx, req.Prompt, req.Options)
		if err != nil {
			return &GenerationError{Op: req.Op, Slot: req.Slot, Cause: err}
		}
		if res == nil {
			res = &llm.Result{}
		}
		result = res
		return nil
	})

	switch {
	case errors.Is(err, ErrInFlight):
		metrics.GenerationTotal.WithLabelValues(req.Op, metrics.OutcomeInFlight).Inc()
		s.logger.Info("generation skipped, slot busy", zap.String("op", req.Op), zap.String("slot", req.Slot))
		return nil, err
	case err != nil:
		metrics.GenerationTotal.WithLabelValues(req.Op, metrics.OutcomeFailure).Inc()
		metrics.GenerationDuration.WithLabelValues(req.Op).Observe(time.Since(start).Seconds())
		s.logger.Error("generation failed",
			zap.String("op", req.Op),
			zap.String("slot", req.Slot),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.GenerationTotal.WithLabelValues(req.Op, metrics.OutcomeSuccess).Inc()
	metrics.GenerationDuration.WithLabelValues(req.Op).Observe(time.Since(start).Seconds())
	s.logger.Info("generation complete",
		zap.String("op", req.Op),
		zap.String("slot", req.Slot),
		zap.Int("chars", len(result.Text)),
		zap.Int("citations", len(result.Citations)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (s *Service) contentPillar(id types.PillarID) (types.Pillar, error) {
	p, ok := s.catalog.Get(id)
	if !ok {
		return types.Pillar{}, fmt.Errorf("%w: %q", ErrUnknownPillar, id)
	}
	if !p.ID.IsContent() {
		return types.Pillar{}, fmt.Errorf("%w: %q", ErrNotContentPillar, id)
	}
	return p, nil
}

// InsightPrompt builds the automated-research prompt for a pillar.
func InsightPrompt(p types.Pillar, source string) (string, error) {
	template, err := prompts.Get(prompts.InsightFile, prompts.KeyAutomatedInsight)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(p.Questions))
	for i, q := range p.Questions {
		lines[i] = fmt.Sprintf("Q%d: [Detailed answer to: %s]", i+1, q)
	}
	return prompts.Format(template, map[string]string{
		"PillarName":    p.Name,
		"SourceName":    source,
		"QuestionLines": strings.Join(lines, "\n"),
	}), nil
}

// GenerateInsight researches the current signal for a pillar, grounded in search,
// and extracts a GeneratedInsight whose reflections align with the pillar's questions.
func (s *Service) GenerateInsight(ctx context.Context, pillarID types.PillarID, source string) (types.GeneratedInsight, error) {
	p, err := s.contentPillar(pillarID)
	if err != nil {
		return types.GeneratedInsight{}, err
	}
	prompt, err := InsightPrompt(p, source)
	if err != nil {
		return types.GeneratedInsight{}, err
	}

	res, err := s.Call(ctx, Request{
		Op:      OpInsight,
		Slot:    InsightSlot(p.ID),
		Prompt:  prompt,
		Options: llm.GenerateOptions{Tier: llm.TierStandard, Grounding: true},
	})
	if err != nil {
		return types.GeneratedInsight{}, err
	}
	return extract.Insight(res.Text, p.Questions, res.Citations), nil
}

// SynthesizeNarrative rewrites a signal and its reflections into an editorial narrative.
// Answers are taken in the pillar's question order; unanswered questions are skipped.
func (s *Service) SynthesizeNarrative(ctx context.Context, pillarID types.PillarID, signal string, answers map[string]string) (string, error) {
	p, err := s.contentPillar(pillarID)
	if err != nil {
		return "", err
	}
	template, err := prompts.Get(prompts.InsightFile, prompts.KeySynthesizeNarrative)
	if err != nil {
		return "", err
	}

	var reflections []string
	for _, q := range p.Questions {
		if a := strings.TrimSpace(answers[q]); a != "" {
			reflections = append(reflections, a)
		}
	}

	res, err := s.Call(ctx, Request{
		Op:   OpNarrative,
		Slot: NarrativeSlot(p.ID),
		Prompt: prompts.Format(template, map[string]string{
			"Signal":      signal,
			"Reflections": strings.Join(reflections, " | "),
		}),
		Options: llm.GenerateOptions{Tier: llm.TierStandard},
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return NarrativeFailed, nil
	}
	return text, nil
}

// BatchResult is the outcome for one pillar of GenerateAll.
type BatchResult struct {
	PillarID types.PillarID
	Insight  types.GeneratedInsight
	Err      error
}

// GenerateAll runs GenerateInsight for every content pillar with bounded concurrency.
// A failure for one pillar is recorded in its result and does not stop the others.
// onResult, if set, is called once per pillar as results arrive, never concurrently.
// The returned results are in catalog order.
func (s *Service) GenerateAll(ctx context.Context, source string, onResult func(BatchResult)) []BatchResult {
	content := s.catalog.ContentPillars()
	results := make([]BatchResult, len(content))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, p := range content {
		g.Go(func() error {
			in, err := s.GenerateInsight(ctx, p.ID, source)
			r := BatchResult{PillarID: p.ID, Insight: in, Err: err}
			results[i] = r
			if onResult != nil {
				mu.Lock()
				onResult(r)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
