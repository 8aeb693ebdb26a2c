package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"betpool-backend/internal/auth"
	"betpool-backend/internal/service"
)

// AuthHandler owns the identity endpoints: token exchange, /me, and the
// public user count.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// HandleCreateUser exchanges a provider access token for a bearer token.
//
// HTTP: POST /users
// Body: {"access_token": "..."}
// Success: {"token": "..."}
func (h *AuthHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	token, err := h.auth.ExchangeToken(r.Context(), body.AccessToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// HandleMe returns the authenticated caller's identity claims.
//
// HTTP: GET /me (auth required)
//
// The response comes straight from the validated token; the middleware
// already proved it, so there is no database round trip here.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"id":        claims.Subject,
			"name":      claims.Name,
			"avatarUrl": claims.AvatarURL,
		},
	})
}

// HandleUserCount returns the total number of registered users.
//
// HTTP: GET /users/count (public, diagnostic)
func (h *AuthHandler) HandleUserCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.auth.Count(r.Context())
	if err != nil {
		h.logger.Error("counting users", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}
