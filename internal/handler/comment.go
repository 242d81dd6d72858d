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

// CommentHandler manages threaded discussion on snippets.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// HandleListBySnippet returns a snippet's comments in creation order.
//
// HTTP: GET /api/snippets/{id}/comments
func (h *CommentHandler) HandleListBySnippet(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListBySnippet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// commentRequest is the POST /api/snippets/{id}/comments body. A non-nil
// parentId makes this a reply.
type commentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

// HandleCreate posts a comment on a snippet.
//
// HTTP: POST /api/snippets/{id}/comments
// Auth: Required
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	comment, err := h.comments.Create(r.Context(), userID, chi.URLParam(r, "id"), req.Content, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
