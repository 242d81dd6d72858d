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

// MaxCommentLength caps a single comment.
const MaxCommentLength = 10000

// CommentService handles threaded discussion on snippets.
type CommentService struct {
	comments repository.CommentRepository
	snippets repository.SnippetRepository
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	snippets repository.SnippetRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		snippets: snippets,
		logger:   logger,
	}
}

// Create posts a comment on a snippet, optionally as a reply.
//
// CROSS-SNIPPET REPLY GUARD:
// The schema's foreign key only proves the parent comment EXISTS — it says
// nothing about which snippet it hangs off. Without this check a reply could
// graft one snippet's thread onto another's. We fetch the parent and require
// it to belong to the same snippet.
func (s *CommentService) Create(ctx context.Context, authorID, snippetID, content string, parentID *string) (*model.Comment, error) {
	content = strings.TrimSpace(content)

	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	if _, err := s.snippets.GetSnippetByID(ctx, snippetID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.comments.GetCommentByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.SnippetID != snippetID {
			return nil, apperror.ValidationFailed("parentId",
				"parent comment belongs to a different snippet")
		}
	}

	comment := &model.Comment{
		SnippetID: snippetID,
		AuthorID:  authorID,
		Content:   content,
		ParentID:  parentID,
	}

	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("snippetID", snippetID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("snippetID", snippetID),
	)

	return comment, nil
}

// ListBySnippet returns a snippet's comments in creation order; replies are
// reassembled client-side from parentId.
func (s *CommentService) ListBySnippet(ctx context.Context, snippetID string) ([]model.Comment, error) {
	if _, err := s.snippets.GetSnippetByID(ctx, snippetID); err != nil {
		return nil, err
	}
	return s.comments.ListCommentsBySnippet(ctx, snippetID)
}
