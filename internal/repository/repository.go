// Package repository declares the storage interfaces the service layer
// depends on. Concrete implementations live in repository/sqlite; tests use
// in-memory mocks. Services program against these interfaces and never
// import a driver package.
package repository

import (
	"context"

	"github.com/sakif/codementor/internal/model"
)

// ListOptions is shared limit/offset pagination for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// SnippetFilter narrows snippet listings. Zero values mean "no filter".
type SnippetFilter struct {
	AuthorID string
	Language model.Language
	Status   model.SnippetStatus
}

// UserRepository manages account records.
type UserRepository interface {
	// Create inserts a new user. A username or github_id collision
	// surfaces as apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error
	// CreateWithProfile inserts the account AND its default gamification
	// profile (0 points, level 1, empty bio) in a single transaction, so
	// an account can never exist without a profile, and a half-created
	// pair can never be observed. This is the explicit replacement for
	// the "auto-provision profile on user creation" lifecycle hook.
	CreateWithProfile(ctx context.Context, user *model.User) (*model.UserProfile, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// GetUserByGitHubID returns apperror.ErrNotFound when no account is
	// linked to the given GitHub identity.
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// ProfileRepository manages the one-to-one gamification profile.
type ProfileRepository interface {
	// CreateProfile inserts a default profile for the user. Inserting a
	// second profile for the same user fails with apperror.ErrConflict —
	// the one-to-one invariant is enforced by the primary key, never by
	// silently overwriting.
	CreateProfile(ctx context.Context, profile *model.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, profile *model.UserProfile) error
	// AddPoints atomically adds delta (possibly negative) to the user's
	// reputation and raises the level to floor(points/100)+1 if that is
	// higher than the current level. The level NEVER decreases. Returns
	// the post-update profile.
	AddPoints(ctx context.Context, userID string, delta int) (*model.UserProfile, error)
}

// SnippetRepository manages submitted code snippets.
type SnippetRepository interface {
	CreateSnippet(ctx context.Context, snippet *model.Snippet) error
	GetSnippetByID(ctx context.Context, id string) (*model.Snippet, error)
	ListSnippets(ctx context.Context, filter SnippetFilter, opts ListOptions) ([]model.Snippet, error)
	// UpdateSnippet persists title/description/code/language/status.
	// AuthorID and CreatedAt are immutable and never written.
	UpdateSnippet(ctx context.Context, snippet *model.Snippet) error
	DeleteSnippet(ctx context.Context, id string) error
	// IncrementViewCount bumps view_count by one with an atomic UPDATE,
	// so concurrent detail reads can't lose counts.
	IncrementViewCount(ctx context.Context, id string) error
}

// ReviewRepository manages reviews and their votes.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *model.Review) error
	GetReviewByID(ctx context.Context, id string) (*model.Review, error)
	ListReviewsBySnippet(ctx context.Context, snippetID string) ([]model.Review, error)

	// CastVote inserts or replaces the (review, user) vote and, in the
	// same transaction, recomputes the review's helpfulness_score as the
	// sum of all persisted votes — including the one just written. The
	// recompute is idempotent: rerunning it with the same vote set yields
	// the same score. Returns the new score.
	CastVote(ctx context.Context, reviewID, userID string, vote int) (int, error)
	// RemoveVote deletes the (review, user) vote if present and recomputes
	// the score symmetrically. Removing a vote that doesn't exist returns
	// apperror.ErrNotFound.
	RemoveVote(ctx context.Context, reviewID, userID string) (int, error)
}

// CommentRepository manages threaded snippet comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	// ListCommentsBySnippet returns comments in creation order (oldest
	// first); callers reassemble the reply tree from ParentID.
	ListCommentsBySnippet(ctx context.Context, snippetID string) ([]model.Comment, error)
}

// BadgeRepository manages the badge catalog and per-user awards.
type BadgeRepository interface {
	CreateBadge(ctx context.Context, badge *model.Badge) error
	// ListBadges returns the full catalog ordered by points_required.
	ListBadges(ctx context.Context) ([]model.Badge, error)
	// AwardBadge grants a badge to a user. A repeat award of the same
	// badge fails with apperror.ErrConflict.
	AwardBadge(ctx context.Context, userID, badgeID string) (*model.UserBadge, error)
	// ListUserBadges returns the user's earned badges (catalog joined in),
	// newest first.
	ListUserBadges(ctx context.Context, userID string) ([]model.UserBadge, error)
}

// SkillRepository manages per-(user, skill area) progress.
type SkillRepository interface {
	// AddExperience upserts the (user, area) record and atomically adds
	// xp, raising the level to floor(xp/50)+1 when that exceeds the
	// current level — same monotonic rule as reputation. Returns the
	// post-update record.
	AddExperience(ctx context.Context, userID string, area model.SkillArea, xp int) (*model.SkillProgress, error)
	ListSkillProgress(ctx context.Context, userID string) ([]model.SkillProgress, error)
}
