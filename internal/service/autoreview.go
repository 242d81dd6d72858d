package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/model"
	"github.com/sakif/codementor/internal/repository"
	"github.com/sakif/codementor/internal/sandbox"
)

// maxOutputInReview caps how much captured output is embedded in a review
// body. Runaway print loops shouldn't produce megabyte reviews.
const maxOutputInReview = 4000

// AutoReviewService generates machine reviews by actually executing the
// snippet in an isolated sandbox and turning the run's outcome into review
// feedback. It is an optional feature: when no sandbox backend is
// configured (runner == nil) every request reports Unavailable instead of
// failing obscurely.
type AutoReviewService struct {
	runner   sandbox.Runner
	reviews  *ReviewService
	snippets repository.SnippetRepository
	logger   *slog.Logger
}

// NewAutoReviewService creates an AutoReviewService. A nil runner disables
// the feature cleanly.
func NewAutoReviewService(
	runner sandbox.Runner,
	reviews *ReviewService,
	snippets repository.SnippetRepository,
	logger *slog.Logger,
) *AutoReviewService {
	return &AutoReviewService{
		runner:   runner,
		reviews:  reviews,
		snippets: snippets,
		logger:   logger,
	}
}

// Enabled reports whether a sandbox backend is configured.
func (s *AutoReviewService) Enabled() bool {
	return s.runner != nil
}

// Review runs the snippet and persists the result as an AI review on it.
func (s *AutoReviewService) Review(ctx context.Context, snippetID string) (*model.Review, error) {
	if s.runner == nil {
		return nil, apperror.Unavailable("automated review")
	}

	snippet, err := s.snippets.GetSnippetByID(ctx, snippetID)
	if err != nil {
		return nil, err
	}

	result, err := s.runner.Run(ctx, sandbox.RunRequest{
		Language: string(snippet.Language),
		Code:     snippet.Code,
	})
	if err != nil {
		if errors.Is(err, sandbox.ErrUnsupportedLanguage) {
			return nil, apperror.ValidationFailed("language",
				fmt.Sprintf("automated review does not support %s", snippet.Language))
		}
		s.logger.Error("sandbox run failed",
			slog.String("snippetID", snippetID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("running snippet %s: %w", snippetID, err)
	}

	content, severity := composeRunReview(result)

	review, err := s.reviews.CreateAI(ctx, snippetID, content, model.CategoryBugs, severity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("automated review completed",
		slog.String("snippetID", snippetID),
		slog.Int("exitCode", result.ExitCode),
		slog.Duration("duration", result.Duration),
	)

	return review, nil
}

// composeRunReview turns a sandbox run into review text and a severity. A
// clean exit is informational; any failure is critical, since the code
// demonstrably does not run.
func composeRunReview(result *sandbox.RunResult) (string, model.ReviewSeverity) {
	var b strings.Builder

	if result.ExitCode == 0 {
		b.WriteString("Your code ran successfully")
	} else {
		fmt.Fprintf(&b, "Your code exited with status %d", result.ExitCode)
	}
	fmt.Fprintf(&b, " in %s.\n", result.Duration.Round(1e6))

	if out := truncateOutput(result.Stdout); out != "" {
		b.WriteString("\nOutput:\n")
		b.WriteString(out)
		if !strings.HasSuffix(out, "\n") {
			b.WriteString("\n")
		}
	}
	if errOut := truncateOutput(result.Stderr); errOut != "" {
		b.WriteString("\nErrors:\n")
		b.WriteString(errOut)
		if !strings.HasSuffix(errOut, "\n") {
			b.WriteString("\n")
		}
	}

	if result.ExitCode != 0 {
		b.WriteString("\nFix the failure above before asking for a community review.")
		return b.String(), model.SeverityCritical
	}

	b.WriteString("\nNo runtime problems detected.")
	return b.String(), model.SeverityInfo
}

func truncateOutput(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutputInReview {
		return s[:maxOutputInReview] + "\n... (output truncated)"
	}
	return s
}
