package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/insight-journal/internal/store"
	"github.com/jonathan/insight-journal/internal/types"
	"go.uber.org/zap"
)

// saveResponse reports a saved insight and the resulting collection size.
type saveResponse struct {
	Insight       types.Insight `json:"insight"`
	Count         int           `json:"count"`
	Persisted     bool          `json:"persisted"`
	SavedInMemory bool          `json:"saved_in_memory"`
	Error         string        `json:"error,omitempty"`
	Message       string        `json:"message,omitempty"`
}

func (s *Server) handleListInsights(w http.ResponseWriter, r *http.Request) {
	pillar := types.PillarID(r.URL.Query().Get("pillar"))
	outputType := r.URL.Query().Get("output_type")

	out := make(types.InsightCollection, 0)
	for _, in := range s.store.Insights() {
		if pillar != "" && in.PillarID != pillar {
			continue
		}
		if outputType != "" && !in.HasOutputType(outputType) {
			continue
		}
		out = append(out, in)
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleGetInsight(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	in, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, &ErrNotFound{Resource: "insight", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, in)
}

func (s *Server) handleCreateInsight(w http.ResponseWriter, r *http.Request) {
	var draft types.InsightDraft
	if err := s.decode(r, &draft); err != nil {
		s.writeError(w, err)
		return
	}

	in, c, err := s.store.Create(r.Context(), draft)
	var persistErr *store.PersistenceError
	switch {
	case errors.As(err, &persistErr):
		s.logger.Error("insight not persisted", zap.String("id", in.ID), zap.Error(err))
		s.jsonResponse(w, http.StatusInternalServerError, saveResponse{
			Insight:       in,
			Count:         len(c),
			Persisted:     false,
			SavedInMemory: true,
			Error:         "persistence_failed",
			Message:       err.Error(),
		})
		return
	case err != nil:
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, saveResponse{
		Insight:       in,
		Count:         len(c),
		Persisted:     true,
		SavedInMemory: true,
	})
}
