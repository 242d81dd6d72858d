package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/model"
	"github.com/sakif/codementor/internal/repository"
)

var _ repository.ReviewRepository = (*DB)(nil)

// CreateReview inserts a review. reviewer_id may be nil (AI-authored).
func (db *DB) CreateReview(ctx context.Context, review *model.Review) error {
	review.ID = xid.New().String()
	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO reviews
		 (id, snippet_id, reviewer_id, reviewer_type, category, severity, content,
		  helpfulness_score, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		review.ID,
		review.SnippetID,
		review.ReviewerID, // nil → SQL NULL
		review.ReviewerType,
		review.Category,
		review.Severity,
		review.Content,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("snippet", review.SnippetID)
		}
		return fmt.Errorf("sqlite: creating review: %w", err)
	}

	review.HelpfulnessScore = 0
	return nil
}

// reviewSelect joins the reviewer's username so readers get a display name
// without a second query. COALESCE covers both AI reviews and reviews whose
// human author deleted their account — either way the fallback name is "AI".
const reviewSelect = `
	SELECT r.id, r.snippet_id, r.reviewer_id, r.reviewer_type, r.category,
	       r.severity, r.content, r.helpfulness_score, r.created_at, r.updated_at,
	       COALESCE(u.username, 'AI')
	FROM reviews r
	LEFT JOIN users u ON u.id = r.reviewer_id`

func scanReview(scan func(...any) error) (*model.Review, error) {
	var r model.Review
	var reviewerID sql.NullString

	err := scan(
		&r.ID,
		&r.SnippetID,
		&reviewerID,
		&r.ReviewerType,
		&r.Category,
		&r.Severity,
		&r.Content,
		&r.HelpfulnessScore,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.ReviewerName,
	)
	if err != nil {
		return nil, err
	}

	if reviewerID.Valid {
		r.ReviewerID = &reviewerID.String
	}
	return &r, nil
}

// GetReviewByID retrieves a single review.
func (db *DB) GetReviewByID(ctx context.Context, id string) (*model.Review, error) {
	row := db.conn.QueryRowContext(ctx, reviewSelect+` WHERE r.id = ?`, id)

	r, err := scanReview(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("review", id)
		}
		return nil, fmt.Errorf("sqlite: getting review %s: %w", id, err)
	}
	return r, nil
}

// ListReviewsBySnippet returns all reviews on a snippet, newest first.
func (db *DB) ListReviewsBySnippet(ctx context.Context, snippetID string) ([]model.Review, error) {
	rows, err := db.conn.QueryContext(ctx,
		reviewSelect+` WHERE r.snippet_id = ? ORDER BY r.created_at DESC`, snippetID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews for snippet %s: %w", snippetID, err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		r, err := scanReview(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		reviews = append(reviews, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reviews: %w", err)
	}

	return reviews, nil
}

// CastVote upserts the (review, user) vote and recomputes the review's
// helpfulness score, all inside one transaction.
//
// WRITE-THEN-RECOMPUTE ORDER MATTERS:
// The score is recomputed from the PERSISTED vote set after the vote row is
// written, so the aggregate always includes the vote that triggered it — no
// stale read. Because the recompute is a pure aggregate (SUM over the stored
// rows), it's idempotent: two racing votes each run it and the last commit
// reflects both rows.
//
// ON CONFLICT ... DO UPDATE is the one-vote-per-user rule in action: a user
// changing +1 to -1 REPLACES their row rather than adding a second one, and
// the sum swings by 2.
func (db *DB) CastVote(ctx context.Context, reviewID, userID string, vote int) (int, error) {
	if !model.ValidVote(vote) {
		return 0, apperror.ValidationFailed("vote", "vote must be +1 or -1")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning vote transaction: %w", err)
	}
	// Rollback is a no-op after a successful Commit.
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO review_votes (id, review_id, user_id, vote, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (review_id, user_id) DO UPDATE SET vote = excluded.vote`,
		xid.New().String(),
		reviewID,
		userID,
		vote,
		time.Now(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, apperror.NotFound("review", reviewID)
		}
		return 0, fmt.Errorf("sqlite: casting vote on review %s: %w", reviewID, err)
	}

	score, err := recomputeScore(ctx, tx, reviewID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing vote transaction: %w", err)
	}

	return score, nil
}

// RemoveVote deletes the (review, user) vote and recomputes the score — the
// symmetric counterpart to CastVote, so retracting a vote can't leave a
// stale aggregate behind.
func (db *DB) RemoveVote(ctx context.Context, reviewID, userID string) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning unvote transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM review_votes WHERE review_id = ? AND user_id = ?`,
		reviewID, userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: removing vote on review %s: %w", reviewID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, apperror.NotFound("vote", reviewID)
	}

	score, err := recomputeScore(ctx, tx, reviewID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing unvote transaction: %w", err)
	}

	return score, nil
}

// recomputeScore rewrites reviews.helpfulness_score as the sum of the stored
// votes. COALESCE turns "no votes" into 0, never NULL.
func recomputeScore(ctx context.Context, tx *sql.Tx, reviewID string) (int, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE reviews
		 SET helpfulness_score = (SELECT COALESCE(SUM(vote), 0)
		                          FROM review_votes
		                          WHERE review_id = ?1),
		     updated_at = ?2
		 WHERE id = ?1`,
		reviewID,
		time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: recomputing score for review %s: %w", reviewID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return 0, apperror.NotFound("review", reviewID)
	}

	var score int
	err = tx.QueryRowContext(ctx,
		`SELECT helpfulness_score FROM reviews WHERE id = ?`, reviewID).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading score for review %s: %w", reviewID, err)
	}

	return score, nil
}
