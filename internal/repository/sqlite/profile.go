package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/model"
	"github.com/sakif/codementor/internal/repository"
)

var _ repository.ProfileRepository = (*DB)(nil)

const profileColumns = `user_id, bio, avatar_url, reputation_points, level, preferred_languages, created_at, updated_at`

// CreateProfile inserts the gamification profile for a user.
//
// user_profiles.user_id is the PRIMARY KEY, so a second profile for the same
// user is rejected by the schema — we translate that into ErrConflict. This
// is the enforcement mechanism behind "exactly one profile per account":
// duplicates fail loudly, they are never silently overwritten.
func (db *DB) CreateProfile(ctx context.Context, profile *model.UserProfile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.Level == 0 {
		profile.Level = 1
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_profiles (`+profileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.UserID,
		profile.Bio,
		profile.AvatarURL,
		profile.ReputationPoints,
		profile.Level,
		profile.PreferredLanguages,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("profile", profile.UserID)
		}
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", profile.UserID)
		}
		return fmt.Errorf("sqlite: creating profile for user %s: %w", profile.UserID, err)
	}

	return nil
}

func (db *DB) scanProfile(row *sql.Row) (*model.UserProfile, error) {
	var p model.UserProfile
	err := row.Scan(
		&p.UserID,
		&p.Bio,
		&p.AvatarURL,
		&p.ReputationPoints,
		&p.Level,
		&p.PreferredLanguages,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfile retrieves the profile attached to a user.
func (db *DB) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	p, err := db.scanProfile(db.conn.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = ?`, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("sqlite: getting profile for user %s: %w", userID, err)
	}
	return p, nil
}

// UpdateProfile persists the user-editable fields: bio, avatar, preferred
// languages. Points and level are NOT written here — they only move through
// AddPoints, so a stale profile struct can't clobber a concurrent award.
func (db *DB) UpdateProfile(ctx context.Context, profile *model.UserProfile) error {
	profile.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE user_profiles
		 SET bio = ?, avatar_url = ?, preferred_languages = ?, updated_at = ?
		 WHERE user_id = ?`,
		profile.Bio,
		profile.AvatarURL,
		profile.PreferredLanguages,
		profile.UpdatedAt,
		profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating profile for user %s: %w", profile.UserID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("profile", profile.UserID)
	}

	return nil
}

// AddPoints adds delta reputation points and recomputes the level, in ONE
// atomic UPDATE.
//
// LOST-UPDATE SAFETY:
// A read-modify-write (SELECT points, add in Go, UPDATE) would let two
// concurrent awards overwrite each other. Doing the arithmetic inside the
// UPDATE statement makes SQLite serialize the increments — no application
// locks needed.
//
// MONOTONIC LEVEL:
// level = MAX(level, floor(new_points/100)+1). The level is a high-water
// mark: a negative delta can lower the points but never the level. All SET
// expressions are evaluated against the pre-update row, so both references
// to reputation_points below see the OLD value and `+ ?1` applies the delta
// consistently. The CASE guards negative totals, where integer division
// would otherwise misbehave (SQLite truncates toward zero, not floor).
func (db *DB) AddPoints(ctx context.Context, userID string, delta int) (*model.UserProfile, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE user_profiles
		 SET reputation_points = reputation_points + ?1,
		     level = MAX(level,
		                 CASE WHEN reputation_points + ?1 >= 0
		                      THEN (reputation_points + ?1) / ?2 + 1
		                      ELSE 1 END),
		     updated_at = ?3
		 WHERE user_id = ?4`,
		delta,
		model.PointsPerLevel,
		time.Now(),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: adding %d points for user %s: %w", delta, userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("profile", userID)
	}

	return db.GetProfile(ctx, userID)
}
