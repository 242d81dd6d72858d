package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/auth"
	"github.com/sakif/codementor/internal/model"
	"github.com/sakif/codementor/internal/service"
)

// ReviewHandler manages reviews on snippets: community reviews, helpfulness
// voting, and the automated sandbox review.
type ReviewHandler struct {
	reviews    *service.ReviewService
	autoreview *service.AutoReviewService
	logger     *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(
	reviews *service.ReviewService,
	autoreview *service.AutoReviewService,
	logger *slog.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		reviews:    reviews,
		autoreview: autoreview,
		logger:     logger,
	}
}

// HandleListBySnippet returns a snippet's reviews, newest first.
//
// HTTP: GET /api/snippets/{id}/reviews
func (h *ReviewHandler) HandleListBySnippet(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListBySnippet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}

// reviewRequest is the POST /api/snippets/{id}/reviews body.
type reviewRequest struct {
	Content  string               `json:"content"`
	Category model.ReviewCategory `json:"category"`
	Severity model.ReviewSeverity `json:"severity"`
}

// HandleCreate posts a community review on a snippet.
//
// HTTP: POST /api/snippets/{id}/reviews
// Auth: Required
func (h *ReviewHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	review, err := h.reviews.Create(r.Context(), userID, chi.URLParam(r, "id"),
		req.Content, req.Category, req.Severity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, review)
}

// HandleAutoReview runs the snippet in the sandbox and posts the result as
// an AI review.
//
// HTTP: POST /api/snippets/{id}/autoreview
// Auth: Required
//
// Returns 503 when no sandbox backend is configured.
func (h *ReviewHandler) HandleAutoReview(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	review, err := h.autoreview.Review(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, review)
}

// voteRequest is the POST /api/reviews/{id}/vote body.
type voteRequest struct {
	Vote int `json:"vote"` // +1 or -1
}

// voteResponse carries the recomputed helpfulness score so the frontend can
// update the counter without refetching the review.
type voteResponse struct {
	HelpfulnessScore int `json:"helpfulnessScore"`
}

// HandleVote casts or changes the caller's vote on a review.
//
// HTTP: POST /api/reviews/{id}/vote
// Auth: Required
func (h *ReviewHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	score, err := h.reviews.Vote(r.Context(), userID, chi.URLParam(r, "id"), req.Vote)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, voteResponse{HelpfulnessScore: score})
}

// HandleUnvote retracts the caller's vote on a review.
//
// HTTP: DELETE /api/reviews/{id}/vote
// Auth: Required
func (h *ReviewHandler) HandleUnvote(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	score, err := h.reviews.Unvote(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, voteResponse{HelpfulnessScore: score})
}
