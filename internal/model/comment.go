package model

import "time"

// Comment is a discussion message on a snippet. Comments form an
// unbounded-depth reply tree through ParentID (nil for top-level comments).
//
// A parent, when present, must belong to the SAME snippet — the schema's
// foreign key alone can't express that, so the service layer checks it
// before insert.
type Comment struct {
	ID        string    `json:"id"`
	SnippetID string    `json:"snippetId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	ParentID  *string   `json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
