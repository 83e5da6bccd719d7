package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/insight-journal/internal/config"
	"github.com/jonathan/insight-journal/internal/types"
	"go.uber.org/zap"
)

// AuthHandler exchanges the analyst passphrase for a bearer token.
type AuthHandler struct {
	passphraseHash string
	passwords      *config.PasswordConfig
	jwtService     *JWTService
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(passphraseHash string, passwords *config.PasswordConfig, jwtService *JWTService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		passphraseHash: passphraseHash,
		passwords:      passwords,
		jwtService:     jwtService,
		logger:         logger,
	}
}

// Login handles analyst login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		writeAuthError(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if !h.passwords.VerifyPassword(req.Passphrase, h.passphraseHash) {
		h.logger.Warn("login rejected", zap.String("remote", r.RemoteAddr))
		err := &ErrInvalidCredentials{}
		writeAuthError(w, HTTPStatus(err), err.Error())
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken()
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		writeAuthError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	response := types.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Log error but response already sent
		h.logger.Warn("error encoding login response", zap.Error(err))
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		// Return first validation error for simplicity
		ve := validationErrors[0]
		return "validation error: " + ve.Field() + " - " + ve.Tag()
	}
	return err.Error()
}
