// Package server provides the HTTP REST API for the insight journal.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/insight-journal/internal/generation"
	"github.com/jonathan/insight-journal/internal/llm"
	"github.com/jonathan/insight-journal/internal/newsletter"
	"github.com/jonathan/insight-journal/internal/store"
)

// ErrInvalidCredentials indicates the passphrase did not match
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid passphrase"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Field + " - " + e.Message
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalidCreds *ErrInvalidCredentials
		reqErr       *ErrValidation
		notFound     *ErrNotFound
		insightErr   *store.ValidationError
		genErr       *generation.GenerationError
	)

	switch {
	case errors.As(err, &invalidCreds):
		return http.StatusUnauthorized
	case errors.As(err, &reqErr), errors.As(err, &insightErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, generation.ErrUnknownPillar):
		return http.StatusNotFound
	case errors.Is(err, generation.ErrNotContentPillar), errors.Is(err, newsletter.ErrNoEligibleInsights):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generation.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, llm.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &genErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable code sent alongside the message.
func errorCode(err error) string {
	switch HTTPStatus(err) {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity:
		return "unprocessable"
	case http.StatusConflict:
		return "generation_in_flight"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	case http.StatusBadGateway:
		return "generation_failed"
	default:
		return "internal_error"
	}
}
