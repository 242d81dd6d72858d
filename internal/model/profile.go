package model

import "time"

// Leveling thresholds. Reputation levels up every 100 points, skill areas
// every 50 XP. These divisors are referenced both here (for mocks and pure
// computation) and in the SQL update expressions in repository/sqlite, which
// must stay in agreement.
const (
	PointsPerLevel = 100
	XPPerLevel     = 50
)

// UserProfile is the gamification record attached one-to-one to a User.
//
// Every user has exactly one profile, created in the same transaction as the
// account itself. ReputationPoints accumulates over time; Level is derived
// from it but is a HIGH-WATER MARK, not a pure function of the current
// points: once a user reaches level 3, losing points never demotes them.
// See AddPoints in repository/sqlite/profile.go for the update rule.
type UserProfile struct {
	UserID             string    `json:"userId"`
	Bio                string    `json:"bio"`
	AvatarURL          string    `json:"avatarUrl"`
	ReputationPoints   int       `json:"reputationPoints"`
	Level              int       `json:"level"`
	PreferredLanguages string    `json:"preferredLanguages"` // comma-separated language tags
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// LevelForPoints computes the reputation level implied by a points total:
// floor(points/100) + 1, clamped to a minimum of 1 for negative totals.
//
// NOTE: this is the level the points WOULD imply. The stored level is
// max(current level, LevelForPoints(points)) — it never decreases.
func LevelForPoints(points int) int {
	if points < 0 {
		return 1
	}
	return points/PointsPerLevel + 1
}

// LevelForExperience is the skill-area analogue of LevelForPoints,
// with a 50 XP threshold per level.
func LevelForExperience(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// BadgeType is the tier of a badge.
type BadgeType string

const (
	BadgeBronze   BadgeType = "bronze"
	BadgeSilver   BadgeType = "silver"
	BadgeGold     BadgeType = "gold"
	BadgePlatinum BadgeType = "platinum"
)

// ValidBadgeType reports whether t is one of the known badge tiers.
func ValidBadgeType(t BadgeType) bool {
	switch t {
	case BadgeBronze, BadgeSilver, BadgeGold, BadgePlatinum:
		return true
	}
	return false
}

// Badge is a static catalog entry describing an achievement users can earn.
// The catalog is ordered by PointsRequired. The logic that decides WHEN a
// badge is granted lives outside this service — awards arrive through an
// explicit Award operation.
type Badge struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	BadgeType      BadgeType `json:"badgeType"`
	Icon           string    `json:"icon"` // emoji or icon class
	PointsRequired int       `json:"pointsRequired"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserBadge records a single badge award. The (user, badge) pair is unique —
// a badge can be earned at most once.
type UserBadge struct {
	UserID   string    `json:"userId"`
	BadgeID  string    `json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`

	// Badge is populated on reads that join the catalog, so API consumers
	// get the name/icon without a second request. Nil on bare rows.
	Badge *Badge `json:"badge,omitempty"`
}

// SkillArea is a categorical tag under which XP and level are tracked
// independently of overall reputation.
type SkillArea string

const (
	SkillPythonBasics       SkillArea = "python_basics"
	SkillPythonAdvanced     SkillArea = "python_advanced"
	SkillJavaScriptBasics   SkillArea = "javascript_basics"
	SkillJavaScriptAdvanced SkillArea = "javascript_advanced"
	SkillSecurity           SkillArea = "security"
	SkillPerformance        SkillArea = "performance"
	SkillCodeStyle          SkillArea = "code_style"
	SkillTesting            SkillArea = "testing"
	SkillAlgorithms         SkillArea = "algorithms"
	SkillDatabases          SkillArea = "databases"
)

// ValidSkillArea reports whether a is one of the known skill areas.
func ValidSkillArea(a SkillArea) bool {
	switch a {
	case SkillPythonBasics, SkillPythonAdvanced, SkillJavaScriptBasics,
		SkillJavaScriptAdvanced, SkillSecurity, SkillPerformance,
		SkillCodeStyle, SkillTesting, SkillAlgorithms, SkillDatabases:
		return true
	}
	return false
}

// SkillProgress tracks a user's XP and level within one skill area.
// One record per (user, skill area) pair; the level follows the same
// monotonic high-water-mark rule as UserProfile.Level.
type SkillProgress struct {
	UserID           string    `json:"userId"`
	SkillArea        SkillArea `json:"skillArea"`
	Level            int       `json:"level"`
	ExperiencePoints int       `json:"experiencePoints"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
