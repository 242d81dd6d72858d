package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/auth"
	"github.com/sakif/codementor/internal/model"
	"github.com/sakif/codementor/internal/repository"
	"github.com/sakif/codementor/internal/service"
)

// SnippetHandler manages CRUD operations for code snippets.
//
// Each handler struct "owns" one area of functionality: all snippet HTTP
// logic lives here, while the rules (validation, ownership, point awards)
// live in the service. The handler's only jobs are parsing the request and
// writing the response.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

// NewSnippetHandler creates a new SnippetHandler.
func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// HandleList returns snippets with optional filters.
//
// HTTP: GET /api/snippets?language=python&status=pending&author=<id>&limit=20&offset=0
//
// All filters are optional; invalid enum values are a 400, invalid numbers
// just fall back to defaults.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.SnippetFilter{
		AuthorID: q.Get("author"),
		Language: model.Language(q.Get("language")),
		Status:   model.SnippetStatus(q.Get("status")),
	}

	// strconv.Atoi errors are ignored — a bad number means "use the default"
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	snippets, err := h.snippets.List(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippets)
}

// snippetRequest is the body for both create and update. On update, empty
// fields mean "leave unchanged".
type snippetRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Code        string              `json:"code"`
	Language    model.Language      `json:"language"`
	Status      model.SnippetStatus `json:"status"`
}

// HandleCreate submits a new snippet for review.
//
// HTTP: POST /api/snippets
// Auth: Required
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req snippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	snippet, err := h.snippets.Create(r.Context(), userID, req.Title, req.Description, req.Code, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snippet)
}

// HandleGetByID returns one snippet and counts the view.
//
// HTTP: GET /api/snippets/{id}
func (h *SnippetHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleUpdate edits a snippet. Author-only.
//
// HTTP: PUT /api/snippets/{id}
// Auth: Required
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req snippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	snippet, err := h.snippets.Update(r.Context(), userID, chi.URLParam(r, "id"),
		req.Title, req.Description, req.Code, req.Language, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet. Author-only.
//
// HTTP: DELETE /api/snippets/{id}
// Auth: Required
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	if err := h.snippets.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent) // 204 — successful deletion, no body
}
