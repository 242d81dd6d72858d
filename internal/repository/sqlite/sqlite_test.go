package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/sakif/codementor/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// Using ":memory:" creates a fresh database that exists only during the test.
// Fast (no disk I/O), isolated (each test gets its own database), and clean
// (destroyed when the connection closes). Migrations run in New, so every
// test starts with the full schema.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var testUserSeq int

// createTestUser registers a user WITH their profile, the way the service
// layer does it. Most tables hang off users via foreign keys, so nearly every
// test needs one.
func createTestUser(t *testing.T, db *DB) *model.User {
	t.Helper()
	testUserSeq++
	user := &model.User{
		Username: fmt.Sprintf("user%d", testUserSeq),
		Email:    fmt.Sprintf("user%d@example.com", testUserSeq),
	}
	if _, err := db.CreateWithProfile(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestSnippet creates a snippet owned by the given user.
func createTestSnippet(t *testing.T, db *DB, authorID string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		Title:    "test snippet",
		Code:     "print('hello')",
		Language: model.LangPython,
		AuthorID: authorID,
	}
	if err := db.CreateSnippet(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}

// createTestReview posts a community review by reviewerID on a snippet.
func createTestReview(t *testing.T, db *DB, snippetID, reviewerID string) *model.Review {
	t.Helper()
	review := &model.Review{
		SnippetID:    snippetID,
		ReviewerID:   &reviewerID,
		ReviewerType: model.ReviewerCommunity,
		Category:     model.CategoryGeneral,
		Severity:     model.SeverityInfo,
		Content:      "looks reasonable",
	}
	if err := db.CreateReview(context.Background(), review); err != nil {
		t.Fatalf("failed to create test review: %v", err)
	}
	return review
}
