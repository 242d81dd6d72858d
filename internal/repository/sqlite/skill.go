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

var _ repository.SkillRepository = (*DB)(nil)

// AddExperience adds XP to a user's skill area, creating the record on first
// touch. One statement does both, so the increment is atomic under
// concurrency just like AddPoints.
//
// The DO UPDATE branch mirrors the reputation rule with a 50 XP divisor:
// unqualified column references resolve to the EXISTING row, so
// `experience_points + ?3` is old-XP-plus-delta, and the level only ever
// rises (MAX against the current level — high-water mark). The fresh-insert
// branch computes the level the same way from a zero baseline, so a first
// grant of 149 XP lands directly on level 3.
func (db *DB) AddExperience(ctx context.Context, userID string, area model.SkillArea, xp int) (*model.SkillProgress, error) {
	if !model.ValidSkillArea(area) {
		return nil, apperror.ValidationFailed("skillArea", fmt.Sprintf("unknown skill area %q", area))
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO skill_progress (user_id, skill_area, level, experience_points, created_at, updated_at)
		 VALUES (?1, ?2,
		         CASE WHEN ?3 >= 0 THEN ?3 / ?4 + 1 ELSE 1 END,
		         ?3, ?5, ?5)
		 ON CONFLICT (user_id, skill_area) DO UPDATE SET
		         experience_points = experience_points + ?3,
		         level = MAX(level,
		                     CASE WHEN experience_points + ?3 >= 0
		                          THEN (experience_points + ?3) / ?4 + 1
		                          ELSE 1 END),
		         updated_at = ?5`,
		userID,
		string(area),
		xp,
		model.XPPerLevel,
		time.Now(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, fmt.Errorf("sqlite: adding %d xp to %s/%s: %w", xp, userID, area, err)
	}

	return db.getSkillProgress(ctx, userID, area)
}

func (db *DB) getSkillProgress(ctx context.Context, userID string, area model.SkillArea) (*model.SkillProgress, error) {
	var p model.SkillProgress
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, skill_area, level, experience_points, created_at, updated_at
		 FROM skill_progress WHERE user_id = ? AND skill_area = ?`,
		userID, string(area),
	).Scan(&p.UserID, &p.SkillArea, &p.Level, &p.ExperiencePoints, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("skill progress", fmt.Sprintf("%s/%s", userID, area))
		}
		return nil, fmt.Errorf("sqlite: getting skill progress %s/%s: %w", userID, area, err)
	}
	return &p, nil
}

// ListSkillProgress returns all of a user's skill records, ordered by area
// for a stable dashboard layout.
func (db *DB) ListSkillProgress(ctx context.Context, userID string) ([]model.SkillProgress, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, skill_area, level, experience_points, created_at, updated_at
		 FROM skill_progress WHERE user_id = ? ORDER BY skill_area ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing skill progress for user %s: %w", userID, err)
	}
	defer rows.Close()

	progress := []model.SkillProgress{}
	for rows.Next() {
		var p model.SkillProgress
		if err := rows.Scan(
			&p.UserID, &p.SkillArea, &p.Level, &p.ExperiencePoints,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning skill progress row: %w", err)
		}
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating skill progress: %w", err)
	}

	return progress, nil
}
