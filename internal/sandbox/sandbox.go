// Package sandbox defines the interface for running untrusted snippet code
// in an isolated environment. The automated reviewer executes a submitted
// snippet here and turns the outcome into an AI review.
package sandbox

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupportedLanguage is returned when no sandbox image exists for the
// snippet's language. Only runnable interpreter languages are supported.
var ErrUnsupportedLanguage = errors.New("sandbox: unsupported language")

// RunRequest describes one snippet execution.
type RunRequest struct {
	// Language is the snippet's language tag (e.g. "python",
	// "javascript"). It selects the container image and interpreter.
	Language string `json:"language"`
	Code     string `json:"code"`
}

// RunResult is the captured outcome of a sandboxed run.
type RunResult struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
}

// Runner executes snippet code in an isolated environment.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (*RunResult, error)
}
