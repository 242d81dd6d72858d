package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/auth"
	"github.com/sakif/codementor/internal/service"
)

// ProfileHandler serves profiles, the dashboard, and the badge catalog.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleGetOwn returns the authenticated user's profile with earned badges.
//
// HTTP: GET /api/profile
// Auth: Required
func (h *ProfileHandler) HandleGetOwn(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	view, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleGetByUser returns any user's public profile.
//
// HTTP: GET /api/users/{id}/profile
func (h *ProfileHandler) HandleGetByUser(w http.ResponseWriter, r *http.Request) {
	view, err := h.profiles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// profileRequest is the PUT /api/profile body.
type profileRequest struct {
	Bio                string `json:"bio"`
	AvatarURL          string `json:"avatarUrl"`
	PreferredLanguages string `json:"preferredLanguages"` // comma-separated language tags
}

// HandleUpdate edits the caller's profile fields.
//
// HTTP: PUT /api/profile
// Auth: Required
//
// Reputation and level are not editable here — they only move through
// earned awards.
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	profile, err := h.profiles.Update(r.Context(), userID, req.Bio, req.AvatarURL, req.PreferredLanguages)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleDashboard returns the caller's dashboard: profile, recent snippets,
// skill progress, and the badge wall.
//
// HTTP: GET /api/dashboard
// Auth: Required
func (h *ProfileHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	dashboard, err := h.profiles.GetDashboard(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// HandleListBadges returns the badge catalog in progression order.
//
// HTTP: GET /api/badges
func (h *ProfileHandler) HandleListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.profiles.ListBadges(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, badges)
}
