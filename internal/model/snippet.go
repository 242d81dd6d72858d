package model

import "time"

// Language is the programming-language tag on a snippet.
// The set mirrors what the review UI knows how to highlight.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
	LangCSharp     Language = "csharp"
	LangCPP        Language = "cpp"
	LangRuby       Language = "ruby"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPHP        Language = "php"
	LangSwift      Language = "swift"
	LangKotlin     Language = "kotlin"
	LangTypeScript Language = "typescript"
	LangSQL        Language = "sql"
	LangHTML       Language = "html"
	LangCSS        Language = "css"
	LangOther      Language = "other"
)

// ValidLanguage reports whether l is one of the known language tags.
func ValidLanguage(l Language) bool {
	switch l {
	case LangPython, LangJavaScript, LangJava, LangCSharp, LangCPP,
		LangRuby, LangGo, LangRust, LangPHP, LangSwift, LangKotlin,
		LangTypeScript, LangSQL, LangHTML, LangCSS, LangOther:
		return true
	}
	return false
}

// SnippetStatus is the review lifecycle state of a snippet.
// There is no enforced state machine — any transition is allowed.
type SnippetStatus string

const (
	StatusPending  SnippetStatus = "pending"
	StatusReviewed SnippetStatus = "reviewed"
	StatusArchived SnippetStatus = "archived"
)

// ValidSnippetStatus reports whether s is one of the known statuses.
func ValidSnippetStatus(s SnippetStatus) bool {
	switch s {
	case StatusPending, StatusReviewed, StatusArchived:
		return true
	}
	return false
}

// Snippet is a piece of code submitted for review.
//
// AuthorID is immutable after creation — the repository's Update never
// touches it, and neither does any service path. ViewCount is bumped with an
// atomic SQL increment on detail reads rather than a read-modify-write, so
// concurrent readers can't lose counts.
type Snippet struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"` // what the author wants feedback on
	Code        string        `json:"code"`
	Language    Language      `json:"language"`
	AuthorID    string        `json:"authorId"`
	Status      SnippetStatus `json:"status"`
	ViewCount   int           `json:"viewCount"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
