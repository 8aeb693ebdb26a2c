package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"betpool-backend/internal/auth"
	"betpool-backend/internal/service"
)

// GuessHandler owns guess submission and the per-caller game listing.
type GuessHandler struct {
	guesses *service.GuessService
	logger  *slog.Logger
}

func NewGuessHandler(guesses *service.GuessService, logger *slog.Logger) *GuessHandler {
	return &GuessHandler{guesses: guesses, logger: logger}
}

// HandleSubmit records the caller's prediction for a game.
//
// HTTP: POST /pools/{poolId}/games/{gameId}/guesses (auth required)
// Body: {"firstTeamPoints": 2, "secondTeamPoints": 1}
// Success: 201, empty body
// Failures: 404 when the caller is not a participant of the pool; 400 for
// a duplicate guess, unknown game, or negative points.
func (h *GuessHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstTeamPoints  int `json:"firstTeamPoints"`
		SecondTeamPoints int `json:"secondTeamPoints"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())

	_, err := h.guesses.Submit(
		r.Context(),
		chi.URLParam(r, "poolId"),
		chi.URLParam(r, "gameId"),
		userID,
		body.FirstTeamPoints,
		body.SecondTeamPoints,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// HandleListGames returns every game annotated with the caller's guess in
// the pool, newest first.
//
// HTTP: GET /pools/{id}/games (auth required)
// Success: {"games": [...]}; each game carries "guess": {...} or null.
func (h *GuessHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	games, err := h.guesses.ListGames(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.logger.Error("listing games", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

// HandleCount returns the total number of recorded guesses.
//
// HTTP: GET /guesses/count (public, diagnostic)
func (h *GuessHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.guesses.Count(r.Context())
	if err != nil {
		h.logger.Error("counting guesses", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}
