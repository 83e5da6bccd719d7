package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jonathan/insight-journal/internal/newsletter"
	"github.com/jonathan/insight-journal/internal/rendering"
	"github.com/jonathan/insight-journal/internal/schemas"
	"github.com/jonathan/insight-journal/internal/types"
)

type researchRequest struct {
	Type   string `json:"type" validate:"required"`
	Source string `json:"source"`
}

// curateRequest limits curation to the listed insights; empty means every saved insight.
type curateRequest struct {
	InsightIDs []string `json:"insight_ids"`
}

func (s *Server) handleEligible(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, newsletter.Eligible(s.store.Insights()))
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	source := req.Source
	if source == "" {
		source = types.SuggestedSources[0]
	}

	draft, err := s.assembler.Research(r.Context(), req.Type, source)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, draft)
}

func (s *Server) handleCurate(w http.ResponseWriter, r *http.Request) {
	var req curateRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	insights := s.store.Insights()
	if len(req.InsightIDs) > 0 {
		selected := make([]types.Insight, 0, len(req.InsightIDs))
		for _, id := range req.InsightIDs {
			in, ok := insights.Find(id)
			if !ok {
				s.writeError(w, &ErrNotFound{Resource: "insight", ID: id})
				return
			}
			selected = append(selected, in)
		}
		insights = selected
	}

	draft, err := s.assembler.Curate(r.Context(), insights)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, draft)
}

// handleExport renders the posted draft; drafts are never stored.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := rendering.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "format", Message: err.Error()})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	if err := schemas.Validate(schemas.NewsletterDraft, body); err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	var draft types.NewsletterDraft
	if err := json.Unmarshal(body, &draft); err != nil {
		s.writeError(w, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}

	out, err := rendering.RenderDraft(draft, format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	contentType := "text/markdown; charset=utf-8"
	if format == rendering.FormatText {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}
