package server

import (
	"net/http"

	"github.com/jonathan/insight-journal/internal/generation"
	"github.com/jonathan/insight-journal/internal/types"
	"go.uber.org/zap"
)

// generateRequest selects the data source named in the research prompt.
type generateRequest struct {
	Source string `json:"source"`
}

func (r generateRequest) source() string {
	if r.Source == "" {
		return types.SuggestedSources[0]
	}
	return r.Source
}

// generatedInsightResponse pairs the extracted fields with the question map ready to save.
type generatedInsightResponse struct {
	PillarID       types.PillarID    `json:"pillar_id"`
	Source         string            `json:"source"`
	JournalAnswers map[string]string `json:"journal_answers"`
	types.GeneratedInsight
}

type narrativeRequest struct {
	PillarID types.PillarID    `json:"pillar_id" validate:"required"`
	Signal   string            `json:"signal" validate:"required"`
	Answers  map[string]string `json:"answers"`
}

// batchEvent is one per-pillar event of the generate-all stream.
type batchEvent struct {
	PillarID types.PillarID            `json:"pillar_id"`
	Insight  *generatedInsightResponse `json:"insight,omitempty"`
	Error    string                    `json:"error,omitempty"`
	Status   int                       `json:"status"`
}

func (s *Server) generatedResponse(id types.PillarID, source string, g types.GeneratedInsight) *generatedInsightResponse {
	p, _ := s.catalog.Get(id)
	return &generatedInsightResponse{
		PillarID:         id,
		Source:           source,
		JournalAnswers:   g.JournalAnswers(p.Questions),
		GeneratedInsight: g,
	}
}

func (s *Server) handleGenerateInsight(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	id := types.PillarID(r.PathValue("id"))
	g, err := s.generation.GenerateInsight(r.Context(), id, req.source())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.generatedResponse(id, req.source(), g))
}

// handleGenerateAll streams one event per content pillar as each generation finishes.
func (s *Server) handleGenerateAll(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	source := req.source()
	succeeded, failed := 0, 0
	s.generation.GenerateAll(r.Context(), source, func(res generation.BatchResult) {
		ev := batchEvent{PillarID: res.PillarID, Status: http.StatusOK}
		if res.Err != nil {
			failed++
			ev.Error = res.Err.Error()
			ev.Status = HTTPStatus(res.Err)
		} else {
			succeeded++
			ev.Insight = s.generatedResponse(res.PillarID, source, res.Insight)
		}
		if err := sse.WriteEvent("insight", ev); err != nil {
			s.logger.Warn("failed to write batch event", zap.String("pillar", string(res.PillarID)), zap.Error(err))
		}
	})
	sse.WriteComplete(succeeded, failed)
}

func (s *Server) handleSynthesizeNarrative(w http.ResponseWriter, r *http.Request) {
	var req narrativeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	narrative, err := s.generation.SynthesizeNarrative(r.Context(), req.PillarID, req.Signal, req.Answers)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"narrative": narrative})
}

func (s *Server) handleListSlots(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.generation.Guard().States())
}

func (s *Server) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.generation.Guard().State(r.PathValue("slot")))
}
