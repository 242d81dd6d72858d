package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/codementor/internal/apperror"
	"github.com/sakif/codementor/internal/model"
)

func newTestCommentService(t *testing.T) (*CommentService, *mockSnippetRepo) {
	t.Helper()
	snippets := newMockSnippetRepo()
	svc := NewCommentService(newMockCommentRepo(), snippets, testLogger())
	return svc, snippets
}

func seedSnippetFor(t *testing.T, snippets *mockSnippetRepo) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{Title: "t", Code: "code", Language: model.LangGo, AuthorID: "author-1"}
	if err := snippets.CreateSnippet(context.Background(), snippet); err != nil {
		t.Fatalf("seeding snippet: %v", err)
	}
	return snippet
}

func TestCommentCreate_Success(t *testing.T) {
	svc, snippets := newTestCommentService(t)
	snippet := seedSnippetFor(t, snippets)

	comment, err := svc.Create(context.Background(), "user-1", snippet.ID, "nice approach", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if comment.ID == "" {
		t.Error("expected comment to have an ID")
	}
	if comment.ParentID != nil {
		t.Errorf("ParentID = %v, want nil", *comment.ParentID)
	}
}

func TestCommentCreate_Reply(t *testing.T) {
	svc, snippets := newTestCommentService(t)
	snippet := seedSnippetFor(t, snippets)

	parent, err := svc.Create(context.Background(), "user-1", snippet.ID, "first", nil)
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	reply, err := svc.Create(context.Background(), "user-2", snippet.ID, "agreed", &parent.ID)
	if err != nil {
		t.Fatalf("reply Create() error = %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != parent.ID {
		t.Errorf("ParentID = %v, want %q", reply.ParentID, parent.ID)
	}
}

// TestCommentCreate_ParentOnDifferentSnippet: a reply may only target a
// parent on the SAME snippet. The foreign key can't express that, so the
// service rejects it.
func TestCommentCreate_ParentOnDifferentSnippet(t *testing.T) {
	svc, snippets := newTestCommentService(t)
	first := seedSnippetFor(t, snippets)
	second := seedSnippetFor(t, snippets)

	parent, err := svc.Create(context.Background(), "user-1", first.ID, "on the first snippet", nil)
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	_, err = svc.Create(context.Background(), "user-2", second.ID, "grafted reply", &parent.ID)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestCommentCreate_UnknownParent(t *testing.T) {
	svc, snippets := newTestCommentService(t)
	snippet := seedSnippetFor(t, snippets)

	ghost := "ghost"
	_, err := svc.Create(context.Background(), "user-1", snippet.ID, "reply to nothing", &ghost)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCommentCreate_UnknownSnippet(t *testing.T) {
	svc, _ := newTestCommentService(t)

	_, err := svc.Create(context.Background(), "user-1", "ghost", "hello?", nil)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCommentCreate_Validation(t *testing.T) {
	svc, snippets := newTestCommentService(t)
	snippet := seedSnippetFor(t, snippets)
	ctx := context.Background()

	for _, content := range []string{"", "   ", strings.Repeat("a", MaxCommentLength+1)} {
		if _, err := svc.Create(ctx, "user-1", snippet.ID, content, nil); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Create(content len %d) error = %v, want ErrValidation", len(content), err)
		}
	}
}

func TestCommentListBySnippet(t *testing.T) {
	svc, snippets := newTestCommentService(t)
	snippet := seedSnippetFor(t, snippets)

	if _, err := svc.Create(context.Background(), "user-1", snippet.ID, "first", nil); err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}
	if _, err := svc.Create(context.Background(), "user-2", snippet.ID, "second", nil); err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	comments, err := svc.ListBySnippet(context.Background(), snippet.ID)
	if err != nil {
		t.Fatalf("ListBySnippet() error = %v", err)
	}
	if len(comments) != 2 {
		t.Errorf("got %d comments, want 2", len(comments))
	}
}

func TestCommentListBySnippet_UnknownSnippet(t *testing.T) {
	svc, _ := newTestCommentService(t)

	_, err := svc.ListBySnippet(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
