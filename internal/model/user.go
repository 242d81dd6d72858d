// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// Two sign-up paths exist and both land in this struct:
//   - Username/password registration: PasswordHash is set, GitHubID is nil
//   - GitHub OAuth login: GitHubID is set, PasswordHash stays empty
//
// WHY GitHubID *int64 (a pointer)?
// Most accounts are password accounts with no GitHub identity at all.
// A plain int64 can't distinguish "no GitHub account" from "GitHub user 0",
// and the github_id column carries a UNIQUE constraint — storing 0 for every
// password account would collide. nil maps to SQL NULL, and SQLite treats
// each NULL as distinct for uniqueness purposes.
//
// PasswordHash is tagged `json:"-"` so it can never leak into an API
// response, no matter how carelessly a handler encodes the struct.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     *int64    `json:"githubId,omitempty"`
	AvatarURL    string    `json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
