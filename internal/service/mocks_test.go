package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/model"
	"github.com/sakif/codementor/internal/repository"
)

// =========================================================================
// MOCK REPOSITORIES
// =========================================================================
//
// WHAT IS A MOCK?
// A mock is a fake implementation of an interface used in tests.
// Instead of talking to a real database, it stores data in memory.
//
// WHY MOCK?
// 1. SPEED: No database setup, no disk I/O, tests run in microseconds
// 2. ISOLATION: Tests only test the service logic, not the database
// 3. CONTROL: You can simulate errors (database down, connection timeout)
//    that would be hard to trigger with a real database
//
// Each mock implements one repository interface, so the services under test
// can't tell them apart from the SQLite layer. The `fail*` fields inject
// errors for the best-effort paths (awards, status flips) that a real
// database would rarely produce on demand.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- users ---------------------------------------------------------------

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperror.Conflict("user", user.Username)
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) CreateWithProfile(ctx context.Context, user *model.User) (*model.UserProfile, error) {
	if err := m.Create(ctx, user); err != nil {
		return nil, err
	}
	return &model.UserProfile{UserID: user.ID, Level: 1}, nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) GetUserByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	for _, u := range m.users {
		if u.GitHubID != nil && *u.GitHubID == githubID {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", fmt.Sprintf("github:%d", githubID))
}

func (m *mockUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

// --- profiles ------------------------------------------------------------

type mockProfileRepo struct {
	profiles      map[string]*model.UserProfile
	failAddPoints error // injected error for the award path
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.UserProfile)}
}

func (m *mockProfileRepo) CreateProfile(_ context.Context, profile *model.UserProfile) error {
	if _, ok := m.profiles[profile.UserID]; ok {
		return apperror.Conflict("profile", profile.UserID)
	}
	stored := *profile
	if stored.Level == 0 {
		stored.Level = 1
	}
	m.profiles[profile.UserID] = &stored
	return nil
}

func (m *mockProfileRepo) GetProfile(_ context.Context, userID string) (*model.UserProfile, error) {
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, apperror.NotFound("profile", userID)
	}
	result := *profile
	return &result, nil
}

func (m *mockProfileRepo) UpdateProfile(_ context.Context, profile *model.UserProfile) error {
	stored, ok := m.profiles[profile.UserID]
	if !ok {
		return apperror.NotFound("profile", profile.UserID)
	}
	// Same contract as the real repository: points and level are not
	// written by a profile update.
	stored.Bio = profile.Bio
	stored.AvatarURL = profile.AvatarURL
	stored.PreferredLanguages = profile.PreferredLanguages
	return nil
}

func (m *mockProfileRepo) AddPoints(_ context.Context, userID string, delta int) (*model.UserProfile, error) {
	if m.failAddPoints != nil {
		return nil, m.failAddPoints
	}
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, apperror.NotFound("profile", userID)
	}
	profile.ReputationPoints += delta
	if lvl := model.LevelForPoints(profile.ReputationPoints); lvl > profile.Level {
		profile.Level = lvl
	}
	result := *profile
	return &result, nil
}

// --- snippets ------------------------------------------------------------

type mockSnippetRepo struct {
	snippets map[string]*model.Snippet
	nextID   int
}

func newMockSnippetRepo() *mockSnippetRepo {
	return &mockSnippetRepo{snippets: make(map[string]*model.Snippet)}
}

func (m *mockSnippetRepo) CreateSnippet(_ context.Context, snippet *model.Snippet) error {
	m.nextID++
	snippet.ID = fmt.Sprintf("snippet-%d", m.nextID)
	snippet.CreatedAt = time.Now()
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *mockSnippetRepo) GetSnippetByID(_ context.Context, id string) (*model.Snippet, error) {
	snippet, ok := m.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	result := *snippet
	return &result, nil
}

func (m *mockSnippetRepo) ListSnippets(_ context.Context, filter repository.SnippetFilter, opts repository.ListOptions) ([]model.Snippet, error) {
	result := make([]model.Snippet, 0, len(m.snippets))
	for _, s := range m.snippets {
		if filter.AuthorID != "" && s.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Language != "" && s.Language != filter.Language {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })

	if opts.Offset >= len(result) {
		return []model.Snippet{}, nil
	}
	result = result[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *mockSnippetRepo) UpdateSnippet(_ context.Context, snippet *model.Snippet) error {
	stored, ok := m.snippets[snippet.ID]
	if !ok {
		return apperror.NotFound("snippet", snippet.ID)
	}
	// AuthorID is immutable, same as the real repository.
	authorID := stored.AuthorID
	updated := *snippet
	updated.AuthorID = authorID
	m.snippets[snippet.ID] = &updated
	return nil
}

func (m *mockSnippetRepo) DeleteSnippet(_ context.Context, id string) error {
	if _, ok := m.snippets[id]; !ok {
		return apperror.NotFound("snippet", id)
	}
	delete(m.snippets, id)
	return nil
}

func (m *mockSnippetRepo) IncrementViewCount(_ context.Context, id string) error {
	snippet, ok := m.snippets[id]
	if !ok {
		return apperror.NotFound("snippet", id)
	}
	snippet.ViewCount++
	return nil
}

// --- reviews -------------------------------------------------------------

type mockReviewRepo struct {
	reviews map[string]*model.Review
	votes   map[string]map[string]int // reviewID -> userID -> vote
	nextID  int
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{
		reviews: make(map[string]*model.Review),
		votes:   make(map[string]map[string]int),
	}
}

func (m *mockReviewRepo) CreateReview(_ context.Context, review *model.Review) error {
	m.nextID++
	review.ID = fmt.Sprintf("review-%d", m.nextID)
	review.CreatedAt = time.Now()
	stored := *review
	m.reviews[review.ID] = &stored
	return nil
}

func (m *mockReviewRepo) GetReviewByID(_ context.Context, id string) (*model.Review, error) {
	review, ok := m.reviews[id]
	if !ok {
		return nil, apperror.NotFound("review", id)
	}
	result := *review
	return &result, nil
}

func (m *mockReviewRepo) ListReviewsBySnippet(_ context.Context, snippetID string) ([]model.Review, error) {
	result := make([]model.Review, 0)
	for _, r := range m.reviews {
		if r.SnippetID == snippetID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *mockReviewRepo) recompute(reviewID string) int {
	sum := 0
	for _, v := range m.votes[reviewID] {
		sum += v
	}
	m.reviews[reviewID].HelpfulnessScore = sum
	return sum
}

func (m *mockReviewRepo) CastVote(_ context.Context, reviewID, userID string, vote int) (int, error) {
	if !model.ValidVote(vote) {
		return 0, apperror.ValidationFailed("vote", "vote must be +1 or -1")
	}
	if _, ok := m.reviews[reviewID]; !ok {
		return 0, apperror.NotFound("review", reviewID)
	}
	if m.votes[reviewID] == nil {
		m.votes[reviewID] = make(map[string]int)
	}
	m.votes[reviewID][userID] = vote
	return m.recompute(reviewID), nil
}

func (m *mockReviewRepo) RemoveVote(_ context.Context, reviewID, userID string) (int, error) {
	if _, ok := m.reviews[reviewID]; !ok {
		return 0, apperror.NotFound("review", reviewID)
	}
	if _, ok := m.votes[reviewID][userID]; !ok {
		return 0, apperror.NotFound("vote", reviewID)
	}
	delete(m.votes[reviewID], userID)
	return m.recompute(reviewID), nil
}

// --- comments ------------------------------------------------------------

type mockCommentRepo struct {
	comments map[string]*model.Comment
	nextID   int
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[string]*model.Comment)}
}

func (m *mockCommentRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	m.nextID++
	comment.ID = fmt.Sprintf("comment-%d", m.nextID)
	comment.CreatedAt = time.Now()
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockCommentRepo) GetCommentByID(_ context.Context, id string) (*model.Comment, error) {
	comment, ok := m.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	result := *comment
	return &result, nil
}

func (m *mockCommentRepo) ListCommentsBySnippet(_ context.Context, snippetID string) ([]model.Comment, error) {
	result := make([]model.Comment, 0)
	for _, c := range m.comments {
		if c.SnippetID == snippetID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// --- badges --------------------------------------------------------------

type mockBadgeRepo struct {
	badges map[string]*model.Badge
	earned map[string]map[string]time.Time // userID -> badgeID -> earned at
	nextID int
}

func newMockBadgeRepo() *mockBadgeRepo {
	return &mockBadgeRepo{
		badges: make(map[string]*model.Badge),
		earned: make(map[string]map[string]time.Time),
	}
}

func (m *mockBadgeRepo) CreateBadge(_ context.Context, badge *model.Badge) error {
	m.nextID++
	badge.ID = fmt.Sprintf("badge-%d", m.nextID)
	stored := *badge
	m.badges[badge.ID] = &stored
	return nil
}

func (m *mockBadgeRepo) ListBadges(_ context.Context) ([]model.Badge, error) {
	result := make([]model.Badge, 0, len(m.badges))
	for _, b := range m.badges {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PointsRequired < result[j].PointsRequired })
	return result, nil
}

func (m *mockBadgeRepo) AwardBadge(_ context.Context, userID, badgeID string) (*model.UserBadge, error) {
	badge, ok := m.badges[badgeID]
	if !ok {
		return nil, apperror.NotFound("badge", badgeID)
	}
	if m.earned[userID] == nil {
		m.earned[userID] = make(map[string]time.Time)
	}
	if _, ok := m.earned[userID][badgeID]; ok {
		return nil, apperror.Conflict("user_badge", badgeID)
	}
	now := time.Now()
	m.earned[userID][badgeID] = now
	b := *badge
	return &model.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: now, Badge: &b}, nil
}

func (m *mockBadgeRepo) ListUserBadges(_ context.Context, userID string) ([]model.UserBadge, error) {
	result := make([]model.UserBadge, 0)
	for badgeID, at := range m.earned[userID] {
		b := *m.badges[badgeID]
		result = append(result, model.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: at, Badge: &b})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BadgeID < result[j].BadgeID })
	return result, nil
}

// --- skills --------------------------------------------------------------

type mockSkillRepo struct {
	progress map[string]map[model.SkillArea]*model.SkillProgress
	failXP   error // injected error for the award path
}

func newMockSkillRepo() *mockSkillRepo {
	return &mockSkillRepo{progress: make(map[string]map[model.SkillArea]*model.SkillProgress)}
}

func (m *mockSkillRepo) AddExperience(_ context.Context, userID string, area model.SkillArea, xp int) (*model.SkillProgress, error) {
	if m.failXP != nil {
		return nil, m.failXP
	}
	if !model.ValidSkillArea(area) {
		return nil, apperror.ValidationFailed("skillArea", string(area))
	}
	if m.progress[userID] == nil {
		m.progress[userID] = make(map[model.SkillArea]*model.SkillProgress)
	}
	record, ok := m.progress[userID][area]
	if !ok {
		record = &model.SkillProgress{UserID: userID, SkillArea: area, Level: 1}
		m.progress[userID][area] = record
	}
	record.ExperiencePoints += xp
	if lvl := model.LevelForExperience(record.ExperiencePoints); lvl > record.Level {
		record.Level = lvl
	}
	result := *record
	return &result, nil
}

func (m *mockSkillRepo) ListSkillProgress(_ context.Context, userID string) ([]model.SkillProgress, error) {
	result := make([]model.SkillProgress, 0)
	for _, record := range m.progress[userID] {
		result = append(result, *record)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SkillArea < result[j].SkillArea })
	return result, nil
}

// seedProfile registers a profile for the given user so award paths have
// somewhere to land.
func seedProfile(t *testing.T, profiles *mockProfileRepo, userID string) {
	t.Helper()
	if err := profiles.CreateProfile(context.Background(), &model.UserProfile{UserID: userID, Level: 1}); err != nil {
		t.Fatalf("seeding profile for %s: %v", userID, err)
	}
}
