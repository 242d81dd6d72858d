package model

import "time"

// ReviewerType distinguishes machine-generated reviews from human ones.
type ReviewerType string

const (
	ReviewerAI        ReviewerType = "ai"
	ReviewerCommunity ReviewerType = "community"
)

// ReviewCategory classifies what aspect of the code a review addresses.
type ReviewCategory string

const (
	CategoryGeneral       ReviewCategory = "general"
	CategorySecurity      ReviewCategory = "security"
	CategoryPerformance   ReviewCategory = "performance"
	CategoryStyle         ReviewCategory = "style"
	CategoryBestPractices ReviewCategory = "best_practices"
	CategoryBugs          ReviewCategory = "bugs"
	CategoryDocumentation ReviewCategory = "documentation"
)

// ValidReviewCategory reports whether c is one of the known categories.
func ValidReviewCategory(c ReviewCategory) bool {
	switch c {
	case CategoryGeneral, CategorySecurity, CategoryPerformance, CategoryStyle,
		CategoryBestPractices, CategoryBugs, CategoryDocumentation:
		return true
	}
	return false
}

// ReviewSeverity grades how serious a review's finding is.
type ReviewSeverity string

const (
	SeverityInfo       ReviewSeverity = "info"
	SeveritySuggestion ReviewSeverity = "suggestion"
	SeverityWarning    ReviewSeverity = "warning"
	SeverityCritical   ReviewSeverity = "critical"
)

// ValidReviewSeverity reports whether s is one of the known severities.
func ValidReviewSeverity(s ReviewSeverity) bool {
	switch s {
	case SeverityInfo, SeveritySuggestion, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Review is feedback on a snippet, from either a community member or the
// automated sandbox reviewer.
//
// WHY ReviewerID *string?
// AI reviews have no reviewer at all, and deleting a reviewer account
// nullifies the reference (ON DELETE SET NULL) rather than cascading — the
// review text outlives its author. nil therefore means "AI or departed
// reviewer"; display code falls back to "AI" (see ReviewerName).
//
// HelpfulnessScore is DERIVED state: it must always equal the sum of the
// vote values stored for this review. It is a denormalized cache maintained
// write-through by CastVote/RemoveVote — never set it directly.
type Review struct {
	ID               string         `json:"id"`
	SnippetID        string         `json:"snippetId"`
	ReviewerID       *string        `json:"reviewerId,omitempty"`
	ReviewerType     ReviewerType   `json:"reviewerType"`
	Category         ReviewCategory `json:"category"`
	Severity         ReviewSeverity `json:"severity"`
	Content          string         `json:"content"`
	HelpfulnessScore int            `json:"helpfulnessScore"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`

	// ReviewerName is the display name joined in on reads; "AI" when the
	// reviewer reference is NULL.
	ReviewerName string `json:"reviewerName,omitempty"`
}

// Vote values — the only two legal values for a review vote.
const (
	VoteUp   = 1
	VoteDown = -1
)

// ValidVote reports whether v is a legal vote value.
func ValidVote(v int) bool {
	return v == VoteUp || v == VoteDown
}

// ReviewVote is one user's up/down vote on a review. At most one vote exists
// per (review, user) pair; casting again replaces the stored value.
type ReviewVote struct {
	ID        string    `json:"id"`
	ReviewID  string    `json:"reviewId"`
	UserID    string    `json:"userId"`
	Vote      int       `json:"vote"` // +1 or -1
	CreatedAt time.Time `json:"createdAt"`
}
