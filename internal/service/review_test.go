package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/model"
)

type reviewTestEnv struct {
	svc      *ReviewService
	snippets *mockSnippetRepo
	profiles *mockProfileRepo
	skills   *mockSkillRepo
}

func newTestReviewService(t *testing.T) *reviewTestEnv {
	t.Helper()
	env := &reviewTestEnv{
		snippets: newMockSnippetRepo(),
		profiles: newMockProfileRepo(),
		skills:   newMockSkillRepo(),
	}
	env.svc = NewReviewService(newMockReviewRepo(), env.snippets, env.profiles, env.skills, testLogger())
	return env
}

func (env *reviewTestEnv) seedSnippet(t *testing.T, language model.Language) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		Title:    "pending snippet",
		Code:     "code",
		Language: language,
		AuthorID: "author-1",
		Status:   model.StatusPending,
	}
	if err := env.snippets.CreateSnippet(context.Background(), snippet); err != nil {
		t.Fatalf("seeding snippet: %v", err)
	}
	return snippet
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestReviewCreate_Success(t *testing.T) {
	env := newTestReviewService(t)
	snippet := env.seedSnippet(t, model.LangPython)
	seedProfile(t, env.profiles, "reviewer-1")

	review, err := env.svc.Create(context.Background(), "reviewer-1", snippet.ID,
		"consider a list comprehension", model.CategoryStyle, model.SeveritySuggestion)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if review.ReviewerID == nil || *review.ReviewerID != "reviewer-1" {
		t.Errorf("ReviewerID = %v, want reviewer-1", review.ReviewerID)
	}
	if review.ReviewerType != model.ReviewerCommunity {
		t.Errorf("ReviewerType = %q, want %q", review.ReviewerType, model.ReviewerCommunity)
	}
}

func TestReviewCreate_AwardsPointsAndXP(t *testing.T) {
	env := newTestReviewService(t)
	snippet := env.seedSnippet(t, model.LangPython)
	seedProfile(t, env.profiles, "reviewer-1")

	if _, err := env.svc.Create(context.Background(), "reviewer-1", snippet.ID,
		"watch for injection here", model.CategorySecurity, model.SeverityWarning); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	profile, err := env.profiles.GetProfile(context.Background(), "reviewer-1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if profile.ReputationPoints != PointsForReview {
		t.Errorf("points = %d, want %d", profile.ReputationPoints, PointsForReview)
	}

	// A security review earns XP in the security track.
	progress, err := env.skills.ListSkillProgress(context.Background(), "reviewer-1")
	if err != nil {
		t.Fatalf("ListSkillProgress() error = %v", err)
	}
	if len(progress) != 1 || progress[0].SkillArea != model.SkillSecurity {
		t.Fatalf("progress = %+v, want one security record", progress)
	}
	if progress[0].ExperiencePoints != XPForReview {
		t.Errorf("xp = %d, want %d", progress[0].ExperiencePoints, XPForReview)
	}
}

func TestReviewCreate_MarksSnippetReviewed(t *testing.T) {
	env := newTestReviewService(t)
	snippet := env.seedSnippet(t, model.LangPython)
	seedProfile(t, env.profiles, "reviewer-1")

	if _, err := env.svc.Create(context.Background(), "reviewer-1", snippet.ID,
		"looks fine", model.CategoryGeneral, model.SeverityInfo); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := env.snippets.GetSnippetByID(context.Background(), snippet.ID)
	if err != nil {
		t.Fatalf("GetSnippetByID() error = %v", err)
	}
	if updated.Status != model.StatusReviewed {
		t.Errorf("Status = %q, want %q", updated.Status, model.StatusReviewed)
	}
}

// TestReviewCreate_AwardFailureIsSwallowed: a broken award path must not
// lose the review itself.
func TestReviewCreate_AwardFailureIsSwallowed(t *testing.T) {
	env := newTestReviewService(t)
	snippet := env.seedSnippet(t, model.LangPython)
	env.profiles.failAddPoints = errors.New("profile store down")
	env.skills.failXP = errors.New("skill store down")

	review, err := env.svc.Create(context.Background(), "reviewer-1", snippet.ID,
		"still worth saying", model.CategoryGeneral, model.SeverityInfo)
	if err != nil {
		t.Fatalf("Create() error = %v, want nil despite award failures", err)
	}
	if review.ID == "" {
		t.Error("expected the review to be persisted")
	}
}

func TestReviewCreate_Validation(t *testing.T) {
	env := newTestReviewService(t)
	snippet := env.seedSnippet(t, model.LangPython)
	ctx := context.Background()

	tests := []struct {
		name     string
		content  string
		category model.ReviewCategory
		severity model.ReviewSeverity
	}{
		{"empty content", "", model.CategoryGeneral, model.SeverityInfo},
		{"whitespace content", "   ", model.CategoryGeneral, model.SeverityInfo},
		{"content too long", strings.Repeat("a", MaxReviewLength+1), model.CategoryGeneral, model.SeverityInfo},
		{"unknown category", "text", model.ReviewCategory("vibes"), model.SeverityInfo},
		{"unknown severity", "text", model.CategoryGeneral, model.ReviewSeverity("catastrophic")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, "reviewer-1", snippet.ID, tt.content, tt.category, tt.severity)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestReviewCreate_Defaults(t *testing.T) {
	env := newTestReviewService(t)
	snippet := env.seedSnippet(t, model.LangPython)

	review, err := env.svc.Create(context.Background(), "reviewer-1", snippet.ID, "ok", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if review.Category != model.CategoryGeneral {
		t.Errorf("Category = %q, want default %q", review.Category, model.CategoryGeneral)
	}
	if review.Severity != model.SeverityInfo {
		t.Errorf("Severity = %q, want default %q", review.Severity, model.SeverityInfo)
	}
}

func TestReviewCreate_UnknownSnippet(t *testing.T) {
	env := newTestReviewService(t)

	_, err := env.svc.Create(context.Background(), "reviewer-1", "ghost", "text",
		model.CategoryGeneral, model.SeverityInfo)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// SKILL AREA MAPPING TESTS
// =========================================================================

func TestSkillAreaFor(t *testing.T) {
	tests := []struct {
		category model.ReviewCategory
		language model.Language
		want     model.SkillArea
	}{
		{model.CategorySecurity, model.LangPython, model.SkillSecurity},
		{model.CategoryPerformance, model.LangPython, model.SkillPerformance},
		{model.CategoryStyle, model.LangPython, model.SkillCodeStyle},
		{model.CategoryDocumentation, model.LangPython, model.SkillCodeStyle},
		{model.CategoryBestPractices, model.LangPython, model.SkillCodeStyle},
		{model.CategoryBugs, model.LangPython, model.SkillTesting},
		// General feedback credits the language track.
		{model.CategoryGeneral, model.LangPython, model.SkillPythonBasics},
		{model.CategoryGeneral, model.LangJavaScript, model.SkillJavaScriptBasics},
		{model.CategoryGeneral, model.LangTypeScript, model.SkillJavaScriptBasics},
		{model.CategoryGeneral, model.LangSQL, model.SkillDatabases},
		// No language track: fall back to code style.
		{model.CategoryGeneral, model.LangRust, model.SkillCodeStyle},
	}
	for _, tt := range tests {
		if got := skillAreaFor(tt.category, tt.language); got != tt.want {
			t.Errorf("skillAreaFor(%s, %s) = %s, want %s", tt.category, tt.language, got, tt.want)
		}
	}
}

// =========================================================================
// AI REVIEW TESTS
// =========================================================================

func TestCreateAI_NoReviewerNoAwards(t *testing.T) {
	env := newTestReviewService(t)
	snippet := env.seedSnippet(t, model.LangPython)

	review, err := env.svc.CreateAI(context.Background(), snippet.ID, "exit status 1",
		model.CategoryBugs, model.SeverityCritical)
	if err != nil {
		t.Fatalf("CreateAI() error = %v", err)
	}
	if review.ReviewerID != nil {
		t.Errorf("ReviewerID = %v, want nil", *review.ReviewerID)
	}
	if review.ReviewerType != model.ReviewerAI {
		t.Errorf("ReviewerType = %q, want %q", review.ReviewerType, model.ReviewerAI)
	}
}

// =========================================================================
// VOTE TESTS
// =========================================================================

func TestVote_ReturnsRecomputedScore(t *testing.T) {
	env := newTestReviewService(t)
	snippet := env.seedSnippet(t, model.LangPython)
	review, err := env.svc.Create(context.Background(), "reviewer-1", snippet.ID, "text",
		model.CategoryGeneral, model.SeverityInfo)
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	score, err := env.svc.Vote(context.Background(), "voter-1", review.ID, model.VoteUp)
	if err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if score != 1 {
		t.Errorf("score = %d, want 1", score)
	}

	// Flipping replaces the earlier vote.
	score, err = env.svc.Vote(context.Background(), "voter-1", review.ID, model.VoteDown)
	if err != nil {
		t.Fatalf("flip Vote() error = %v", err)
	}
	if score != -1 {
		t.Errorf("score after flip = %d, want -1", score)
	}
}

func TestVote_InvalidValue(t *testing.T) {
	env := newTestReviewService(t)

	_, err := env.svc.Vote(context.Background(), "voter-1", "any-review", 0)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestUnvote(t *testing.T) {
	env := newTestReviewService(t)
	snippet := env.seedSnippet(t, model.LangPython)
	review, err := env.svc.Create(context.Background(), "reviewer-1", snippet.ID, "text",
		model.CategoryGeneral, model.SeverityInfo)
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	if _, err := env.svc.Vote(context.Background(), "voter-1", review.ID, model.VoteUp); err != nil {
		t.Fatalf("setup: Vote() error = %v", err)
	}

	score, err := env.svc.Unvote(context.Background(), "voter-1", review.ID)
	if err != nil {
		t.Fatalf("Unvote() error = %v", err)
	}
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}

	// Retracting a vote that no longer exists is NotFound.
	if _, err := env.svc.Unvote(context.Background(), "voter-1", review.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Unvote() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestReviewListBySnippet_UnknownSnippet(t *testing.T) {
	env := newTestReviewService(t)

	_, err := env.svc.ListBySnippet(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
