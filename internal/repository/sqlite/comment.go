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

var _ repository.CommentRepository = (*DB)(nil)

// CreateComment inserts a comment. The "parent must belong to the same
// snippet" rule is checked by the service layer before calling this — the
// schema's foreign key only guarantees the parent EXISTS.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, snippet_id, author_id, content, parent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.SnippetID,
		comment.AuthorID,
		comment.Content,
		comment.ParentID, // nil → SQL NULL (top-level comment)
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("snippet", comment.SnippetID)
		}
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

const commentColumns = `id, snippet_id, author_id, content, parent_id, created_at, updated_at`

func scanComment(scan func(...any) error) (*model.Comment, error) {
	var c model.Comment
	var parentID sql.NullString

	err := scan(
		&c.ID,
		&c.SnippetID,
		&c.AuthorID,
		&c.Content,
		&parentID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	return &c, nil
}

// GetCommentByID retrieves a single comment. Used by the service to validate
// reply targets.
func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)

	c, err := scanComment(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return c, nil
}

// ListCommentsBySnippet returns a snippet's comments oldest-first — creation
// order, which is also a valid flattening of the reply tree for rendering.
func (db *DB) ListCommentsBySnippet(ctx context.Context, snippetID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE snippet_id = ? ORDER BY created_at ASC`, snippetID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for snippet %s: %w", snippetID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}
