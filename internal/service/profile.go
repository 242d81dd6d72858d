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

// MaxBioLength caps the profile bio.
const MaxBioLength = 500

// ProfileService serves the profile and dashboard views and edits the
// user-facing profile fields. Reputation itself only moves through
// repository.ProfileRepository.AddPoints, called by the content services.
type ProfileService struct {
	profiles repository.ProfileRepository
	snippets repository.SnippetRepository
	skills   repository.SkillRepository
	badges   repository.BadgeRepository
	logger   *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(
	profiles repository.ProfileRepository,
	snippets repository.SnippetRepository,
	skills repository.SkillRepository,
	badges repository.BadgeRepository,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		snippets: snippets,
		skills:   skills,
		badges:   badges,
		logger:   logger,
	}
}

// ProfileView is the full profile page payload: the profile plus earned
// badges.
type ProfileView struct {
	Profile *model.UserProfile `json:"profile"`
	Badges  []model.UserBadge  `json:"badges"`
}

// Get assembles the profile view for a user.
func (s *ProfileService) Get(ctx context.Context, userID string) (*ProfileView, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges, err := s.badges.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing badges for profile %s: %w", userID, err)
	}

	return &ProfileView{Profile: profile, Badges: badges}, nil
}

// Update edits the user-facing profile fields. All fields are validated
// before any write — a rejected update changes nothing.
func (s *ProfileService) Update(ctx context.Context, userID, bio, avatarURL, preferredLanguages string) (*model.UserProfile, error) {
	bio = strings.TrimSpace(bio)
	if len(bio) > MaxBioLength {
		return nil, apperror.ValidationFailed("bio",
			fmt.Sprintf("bio must be %d characters or less", MaxBioLength))
	}

	// preferred_languages is a comma-separated list of language tags.
	// Normalize whitespace and reject unknown tags up front.
	var langs []string
	for _, raw := range strings.Split(preferredLanguages, ",") {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		if !model.ValidLanguage(model.Language(tag)) {
			return nil, apperror.ValidationFailed("preferredLanguages",
				fmt.Sprintf("unknown language %q", tag))
		}
		langs = append(langs, tag)
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Bio = bio
	profile.AvatarURL = strings.TrimSpace(avatarURL)
	profile.PreferredLanguages = strings.Join(langs, ",")

	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		s.logger.Error("failed to update profile",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))

	return profile, nil
}

// BadgeStatus is one catalog entry annotated with whether the user has
// earned it — what the dashboard's badge wall renders.
type BadgeStatus struct {
	model.Badge
	Earned bool `json:"earned"`
}

// Dashboard is the aggregate payload for a user's dashboard page.
type Dashboard struct {
	Profile        *model.UserProfile    `json:"profile"`
	RecentSnippets []model.Snippet       `json:"recentSnippets"`
	SkillProgress  []model.SkillProgress `json:"skillProgress"`
	Badges         []BadgeStatus         `json:"badges"`
}

// GetDashboard assembles the dashboard: the five most recent snippets, all
// skill tracks, and the badge catalog flagged with earned state.
func (s *ProfileService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.snippets.ListSnippets(ctx,
		repository.SnippetFilter{AuthorID: userID},
		repository.ListOptions{Limit: 5})
	if err != nil {
		return nil, fmt.Errorf("listing recent snippets for %s: %w", userID, err)
	}

	progress, err := s.skills.ListSkillProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing skill progress for %s: %w", userID, err)
	}

	catalog, err := s.badges.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing badge catalog: %w", err)
	}
	earned, err := s.badges.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing earned badges for %s: %w", userID, err)
	}

	earnedIDs := make(map[string]bool, len(earned))
	for _, ub := range earned {
		earnedIDs[ub.BadgeID] = true
	}

	badges := make([]BadgeStatus, 0, len(catalog))
	for _, b := range catalog {
		badges = append(badges, BadgeStatus{Badge: b, Earned: earnedIDs[b.ID]})
	}

	return &Dashboard{
		Profile:        profile,
		RecentSnippets: recent,
		SkillProgress:  progress,
		Badges:         badges,
	}, nil
}

// ListBadges returns the badge catalog in progression order.
func (s *ProfileService) ListBadges(ctx context.Context) ([]model.Badge, error) {
	return s.badges.ListBadges(ctx)
}

// AwardBadge grants a badge. The triggering logic (WHEN a badge is earned)
// lives with callers; this just records the award and enforces
// once-per-badge.
func (s *ProfileService) AwardBadge(ctx context.Context, userID, badgeID string) (*model.UserBadge, error) {
	award, err := s.badges.AwardBadge(ctx, userID, badgeID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("badge awarded",
		slog.String("userID", userID),
		slog.String("badgeID", badgeID),
	)

	return award, nil
}
