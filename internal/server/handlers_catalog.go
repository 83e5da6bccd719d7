package server

import (
	"net/http"

	"github.com/jonathan/insight-journal/internal/types"
)

// optionsResponse lists the fixed choices offered by the journal.
type optionsResponse struct {
	Sources         []string `json:"sources"`
	OutputTypes     []string `json:"output_types"`
	NewsletterTypes []string `json:"newsletter_types"`
	ExampleHooks    []string `json:"example_hooks"`
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, optionsResponse{
		Sources:         types.SuggestedSources,
		OutputTypes:     types.OutputTypes,
		NewsletterTypes: types.NewsletterTypes,
		ExampleHooks:    types.ExampleHooks,
	})
}

func (s *Server) handleListPillars(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.catalog.All())
}

func (s *Server) handleGetPillar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := s.catalog.Get(types.PillarID(id))
	if !ok {
		s.writeError(w, &ErrNotFound{Resource: "pillar", ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}
