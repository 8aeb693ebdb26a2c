package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"betpool-backend/internal/apperror"
	"betpool-backend/internal/auth"
	"betpool-backend/internal/service"
)

// PoolHandler owns pool creation, joining, and the read projections.
type PoolHandler struct {
	pools  *service.PoolService
	logger *slog.Logger
}

func NewPoolHandler(pools *service.PoolService, logger *slog.Logger) *PoolHandler {
	return &PoolHandler{pools: pools, logger: logger}
}

// HandleCreate creates a pool.
//
// HTTP: POST /pools (auth optional)
// Body: {"title": "..."}
// Success: 201 {"code": "ABC123"}
//
// This sits behind OptionalAuth: an authenticated caller becomes the owner
// and first participant, an anonymous caller creates an ownerless pool.
// The branch is on identity presence; auth absence is an expected input
// here, never an error.
func (h *PoolHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())

	pool, err := h.pools.Create(r.Context(), body.Title, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"code": pool.Code})
}

// HandleJoin joins the caller into a pool by code.
//
// HTTP: POST /pools/join (auth required)
// Body: {"code": "ABC123"}
// Success: 201 {"message": "User joined pool"}
//
// An unknown code answers 400, not 404: existing clients key off 400 with
// a message on this endpoint, so the usual NotFound mapping is overridden.
func (h *PoolHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON body",
		})
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())

	if _, err := h.pools.Join(r.Context(), body.Code, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "not_found",
				Message: "Pool not found",
			})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User joined pool"})
}

// HandleList returns the pools the caller participates in.
//
// HTTP: GET /pools (auth required)
// Success: {"pools": [...]}
func (h *PoolHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	pools, err := h.pools.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("listing pools", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pools": pools})
}

// HandleGetByID returns one pool projection.
//
// HTTP: GET /pools/{id} (auth required)
// Success: {"pool": {...}}. Any authenticated caller may view any pool;
// there is deliberately no membership check on this read.
func (h *PoolHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	pool, err := h.pools.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pool": pool})
}

// HandleCount returns the total number of pools.
//
// HTTP: GET /pools/count (public, diagnostic)
func (h *PoolHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.pools.Count(r.Context())
	if err != nil {
		h.logger.Error("counting pools", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}
