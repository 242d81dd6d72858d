package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/model"
	"github.com/sakif/codementor/internal/repository"
)

var _ repository.BadgeRepository = (*DB)(nil)

// CreateBadge inserts a catalog entry. Badge names are unique.
func (db *DB) CreateBadge(ctx context.Context, badge *model.Badge) error {
	badge.ID = xid.New().String()
	badge.CreatedAt = time.Now()
	if badge.BadgeType == "" {
		badge.BadgeType = model.BadgeBronze
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO badges (id, name, description, badge_type, icon, points_required, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		badge.ID,
		badge.Name,
		badge.Description,
		badge.BadgeType,
		badge.Icon,
		badge.PointsRequired,
		badge.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("badge", badge.Name)
		}
		return fmt.Errorf("sqlite: creating badge %s: %w", badge.Name, err)
	}

	return nil
}

// ListBadges returns the catalog ordered by points_required ascending — the
// natural "progression" order the dashboard displays.
func (db *DB) ListBadges(ctx context.Context) ([]model.Badge, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, badge_type, icon, points_required, created_at
		 FROM badges ORDER BY points_required ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing badges: %w", err)
	}
	defer rows.Close()

	badges := []model.Badge{}
	for rows.Next() {
		var b model.Badge
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Description, &b.BadgeType,
			&b.Icon, &b.PointsRequired, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning badge row: %w", err)
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating badges: %w", err)
	}

	return badges, nil
}

// AwardBadge records that a user earned a badge. The (user_id, badge_id)
// primary key makes a repeat award a constraint violation → ErrConflict, so
// a badge can be earned at most once.
func (db *DB) AwardBadge(ctx context.Context, userID, badgeID string) (*model.UserBadge, error) {
	award := &model.UserBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: time.Now(),
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_badges (user_id, badge_id, earned_at) VALUES (?, ?, ?)`,
		award.UserID, award.BadgeID, award.EarnedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("badge award", badgeID)
		}
		if isForeignKeyViolation(err) {
			return nil, apperror.NotFound("badge", badgeID)
		}
		return nil, fmt.Errorf("sqlite: awarding badge %s to user %s: %w", badgeID, userID, err)
	}

	return award, nil
}

// ListUserBadges returns a user's earned badges, newest first, with the
// catalog entry joined in for display.
func (db *DB) ListUserBadges(ctx context.Context, userID string) ([]model.UserBadge, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT ub.user_id, ub.badge_id, ub.earned_at,
		        b.id, b.name, b.description, b.badge_type, b.icon, b.points_required, b.created_at
		 FROM user_badges ub
		 JOIN badges b ON b.id = ub.badge_id
		 WHERE ub.user_id = ?
		 ORDER BY ub.earned_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing badges for user %s: %w", userID, err)
	}
	defer rows.Close()

	awards := []model.UserBadge{}
	for rows.Next() {
		var ub model.UserBadge
		var b model.Badge
		if err := rows.Scan(
			&ub.UserID, &ub.BadgeID, &ub.EarnedAt,
			&b.ID, &b.Name, &b.Description, &b.BadgeType,
			&b.Icon, &b.PointsRequired, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user badge row: %w", err)
		}
		ub.Badge = &b
		awards = append(awards, ub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user badges: %w", err)
	}

	return awards, nil
}
