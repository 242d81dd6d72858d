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

// Awards for writing a community review: reputation on the profile plus XP
// in the skill area the review's category maps to.
const (
	PointsForReview = 10
	XPForReview     = 10
	MaxReviewLength = 20000
)

// ReviewService handles reviews on snippets and the voting on them.
type ReviewService struct {
	reviews  repository.ReviewRepository
	snippets repository.SnippetRepository
	profiles repository.ProfileRepository
	skills   repository.SkillRepository
	logger   *slog.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(
	reviews repository.ReviewRepository,
	snippets repository.SnippetRepository,
	profiles repository.ProfileRepository,
	skills repository.SkillRepository,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		snippets: snippets,
		profiles: profiles,
		skills:   skills,
		logger:   logger,
	}
}

// skillAreaFor maps a review's category (and, for uncategorized feedback,
// the snippet's language) to the skill area that earns XP for writing it.
func skillAreaFor(category model.ReviewCategory, language model.Language) model.SkillArea {
	switch category {
	case model.CategorySecurity:
		return model.SkillSecurity
	case model.CategoryPerformance:
		return model.SkillPerformance
	case model.CategoryStyle, model.CategoryDocumentation:
		return model.SkillCodeStyle
	case model.CategoryBugs:
		return model.SkillTesting
	case model.CategoryBestPractices:
		return model.SkillCodeStyle
	}

	// General feedback: credit the snippet's language track when we have
	// one, otherwise fall back to code style.
	switch language {
	case model.LangPython:
		return model.SkillPythonBasics
	case model.LangJavaScript, model.LangTypeScript:
		return model.SkillJavaScriptBasics
	case model.LangSQL:
		return model.SkillDatabases
	}
	return model.SkillCodeStyle
}

// Create posts a community review on a snippet, awards the reviewer, and
// marks the snippet reviewed.
//
// The awards and the status flip are best-effort follow-ups: the review
// itself is the durable record, and re-running an award for a lost point is
// cheaper than explaining a vanished review. Failures there are logged, not
// returned.
func (s *ReviewService) Create(ctx context.Context, reviewerID, snippetID, content string, category model.ReviewCategory, severity model.ReviewSeverity) (*model.Review, error) {
	content = strings.TrimSpace(content)

	if content == "" {
		return nil, apperror.ValidationFailed("content", "review content is required")
	}
	if len(content) > MaxReviewLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("review must be %d characters or less", MaxReviewLength))
	}
	if category == "" {
		category = model.CategoryGeneral
	}
	if !model.ValidReviewCategory(category) {
		return nil, apperror.ValidationFailed("category", fmt.Sprintf("unknown category %q", category))
	}
	if severity == "" {
		severity = model.SeverityInfo
	}
	if !model.ValidReviewSeverity(severity) {
		return nil, apperror.ValidationFailed("severity", fmt.Sprintf("unknown severity %q", severity))
	}

	snippet, err := s.snippets.GetSnippetByID(ctx, snippetID)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		SnippetID:    snippetID,
		ReviewerID:   &reviewerID,
		ReviewerType: model.ReviewerCommunity,
		Category:     category,
		Severity:     severity,
		Content:      content,
	}

	if err := s.reviews.CreateReview(ctx, review); err != nil {
		s.logger.Error("failed to create review",
			slog.String("snippetID", snippetID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating review: %w", err)
	}

	if _, err := s.profiles.AddPoints(ctx, reviewerID, PointsForReview); err != nil {
		s.logger.Warn("failed to award review points",
			slog.String("userID", reviewerID),
			slog.String("error", err.Error()),
		)
	}

	area := skillAreaFor(category, snippet.Language)
	if _, err := s.skills.AddExperience(ctx, reviewerID, area, XPForReview); err != nil {
		s.logger.Warn("failed to award review XP",
			slog.String("userID", reviewerID),
			slog.String("skillArea", string(area)),
			slog.String("error", err.Error()),
		)
	}

	if snippet.Status == model.StatusPending {
		snippet.Status = model.StatusReviewed
		if err := s.snippets.UpdateSnippet(ctx, snippet); err != nil {
			s.logger.Warn("failed to mark snippet reviewed",
				slog.String("snippetID", snippetID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("review created",
		slog.String("id", review.ID),
		slog.String("snippetID", snippetID),
		slog.String("category", string(category)),
	)

	return review, nil
}

// CreateAI persists a machine-generated review. No reviewer, no awards —
// the sandbox doesn't need reputation.
func (s *ReviewService) CreateAI(ctx context.Context, snippetID, content string, category model.ReviewCategory, severity model.ReviewSeverity) (*model.Review, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "review content is required")
	}

	review := &model.Review{
		SnippetID:    snippetID,
		ReviewerID:   nil, // NULL reviewer marks the review as AI-authored
		ReviewerType: model.ReviewerAI,
		Category:     category,
		Severity:     severity,
		Content:      content,
	}

	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("creating AI review: %w", err)
	}

	s.logger.Info("AI review created",
		slog.String("id", review.ID),
		slog.String("snippetID", snippetID),
		slog.String("severity", string(severity)),
	)

	return review, nil
}

// ListBySnippet returns a snippet's reviews, newest first. The snippet is
// looked up first so a bogus ID yields NotFound instead of an empty list.
func (s *ReviewService) ListBySnippet(ctx context.Context, snippetID string) ([]model.Review, error) {
	if _, err := s.snippets.GetSnippetByID(ctx, snippetID); err != nil {
		return nil, err
	}
	return s.reviews.ListReviewsBySnippet(ctx, snippetID)
}

// Vote casts or changes the caller's vote on a review and returns the
// recomputed helpfulness score. The one-vote-per-user rule means voting
// twice replaces the earlier vote, never stacks it.
func (s *ReviewService) Vote(ctx context.Context, userID, reviewID string, vote int) (int, error) {
	if !model.ValidVote(vote) {
		return 0, apperror.ValidationFailed("vote", "vote must be +1 or -1")
	}

	score, err := s.reviews.CastVote(ctx, reviewID, userID, vote)
	if err != nil {
		return 0, err
	}

	s.logger.Info("vote cast",
		slog.String("reviewID", reviewID),
		slog.String("userID", userID),
		slog.Int("vote", vote),
		slog.Int("score", score),
	)

	return score, nil
}

// Unvote retracts the caller's vote, recomputing the score symmetrically.
func (s *ReviewService) Unvote(ctx context.Context, userID, reviewID string) (int, error) {
	score, err := s.reviews.RemoveVote(ctx, reviewID, userID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("vote removed",
		slog.String("reviewID", reviewID),
		slog.String("userID", userID),
		slog.Int("score", score),
	)

	return score, nil
}
