package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/model"
	"github.com/sakif/codementor/internal/repository"
)

// Validation constants for snippets.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxCodeLength        = 100000 // ~100KB of code
	DefaultListLimit     = 20
	MaxListLimit         = 100
)

// Reputation awarded for contributing content. Submitting code for review
// is worth a little; writing a review for someone else is worth more (see
// ReviewService).
const PointsForSnippet = 5

// SnippetService handles the submit/browse/maintain lifecycle of code
// snippets.
type SnippetService struct {
	snippets repository.SnippetRepository
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// NewSnippetService creates a SnippetService.
func NewSnippetService(
	snippets repository.SnippetRepository,
	profiles repository.ProfileRepository,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets: snippets,
		profiles: profiles,
		logger:   logger,
	}
}

// Create validates and saves a new snippet for review, then awards the
// author a small reputation bump.
//
// The award is deliberately NOT part of the snippet's transaction: losing a
// handful of points to a crash window is acceptable, losing the snippet to a
// failed award is not. A failed award is logged and swallowed.
func (s *SnippetService) Create(ctx context.Context, authorID, title, description, code string, language model.Language) (*model.Snippet, error) {
	title = strings.TrimSpace(title)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "code is required")
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	if language == "" {
		language = model.LangPython
	}
	if !model.ValidLanguage(language) {
		return nil, apperror.ValidationFailed("language", fmt.Sprintf("unknown language %q", language))
	}

	snippet := &model.Snippet{
		Title:       title,
		Description: strings.TrimSpace(description),
		Code:        code,
		Language:    language,
		AuthorID:    authorID,
		Status:      model.StatusPending,
	}

	if err := s.snippets.CreateSnippet(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	if _, err := s.profiles.AddPoints(ctx, authorID, PointsForSnippet); err != nil {
		s.logger.Warn("failed to award snippet points",
			slog.String("userID", authorID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("authorID", authorID),
		slog.String("language", string(snippet.Language)),
	)

	return snippet, nil
}

// Get retrieves a snippet for display and counts the view. The increment is
// an atomic UPDATE in the repository, so concurrent viewers all count.
func (s *SnippetService) Get(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	if err := s.snippets.IncrementViewCount(ctx, id); err != nil {
		return nil, err
	}

	return s.snippets.GetSnippetByID(ctx, id)
}

// List retrieves snippets with filtering and pagination, newest first.
func (s *SnippetService) List(ctx context.Context, filter repository.SnippetFilter, limit, offset int) ([]model.Snippet, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	if filter.Language != "" && !model.ValidLanguage(filter.Language) {
		return nil, apperror.ValidationFailed("language", fmt.Sprintf("unknown language %q", filter.Language))
	}
	if filter.Status != "" && !model.ValidSnippetStatus(filter.Status) {
		return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown status %q", filter.Status))
	}

	snippets, err := s.snippets.ListSnippets(ctx, filter, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// Update modifies a snippet. Only the author may edit, and authorship
// itself is immutable — there is no way to reassign a snippet.
func (s *SnippetService) Update(ctx context.Context, callerID, id, title, description, code string, language model.Language, status model.SnippetStatus) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.snippets.GetSnippetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if snippet.AuthorID != callerID {
		return nil, apperror.Forbidden("only the author may edit a snippet")
	}

	if title = strings.TrimSpace(title); title != "" {
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		snippet.Title = title
	}
	if description != "" {
		if len(description) > MaxDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
		}
		snippet.Description = strings.TrimSpace(description)
	}
	if code != "" {
		if len(code) > MaxCodeLength {
			return nil, apperror.ValidationFailed("code",
				fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
		}
		snippet.Code = code
	}
	if language != "" {
		if !model.ValidLanguage(language) {
			return nil, apperror.ValidationFailed("language", fmt.Sprintf("unknown language %q", language))
		}
		snippet.Language = language
	}
	if status != "" {
		// Status transitions are unconstrained — any state may move to
		// any other (archive a pending snippet, reopen an archived one).
		if !model.ValidSnippetStatus(status) {
			return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown status %q", status))
		}
		snippet.Status = status
	}

	if err := s.snippets.UpdateSnippet(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", snippet.ID))

	return snippet, nil
}

// Delete removes a snippet. Author-only, same as Update.
func (s *SnippetService) Delete(ctx context.Context, callerID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.snippets.GetSnippetByID(ctx, id)
	if err != nil {
		return err
	}
	if snippet.AuthorID != callerID {
		return apperror.Forbidden("only the author may delete a snippet")
	}

	if err := s.snippets.DeleteSnippet(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}
