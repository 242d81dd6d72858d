package docker

import "time"

// LanguageImage describes how to run one language inside the sandbox.
type LanguageImage struct {
	// Image is the Docker image to run the code in.
	Image string
	// Command produces the container exec command for a piece of code,
	// e.g. ["python", "-c", code].
	Args []string
}

// Config holds the configuration for Docker-backed snippet execution.
type Config struct {
	// Languages maps a snippet language tag to its sandbox image and
	// interpreter invocation. The code is appended as the final argument.
	Languages map[string]LanguageImage
	// MemoryLimit is the maximum memory per container, in bytes.
	MemoryLimit int64
	// CPULimit is the number of CPUs a container may use.
	CPULimit float64
	// Timeout is the maximum wall-clock time for one run.
	Timeout time.Duration
	// PoolSize is the number of pre-warmed containers kept per language.
	PoolSize int
}

// DefaultConfig sandboxes the two interpreter languages the automated
// reviewer supports out of the box. Compiled languages need a build step the
// one-shot exec model doesn't cover, so they are intentionally absent.
func DefaultConfig() Config {
	return Config{
		Languages: map[string]LanguageImage{
			"python": {
				Image: "python:3.12-alpine",
				Args:  []string{"python", "-c"},
			},
			"javascript": {
				Image: "node:22-alpine",
				Args:  []string{"node", "-e"},
			},
		},
		// 128 MB memory, half a CPU, 5 seconds — enough for a review
		// snippet, hostile to a fork bomb.
		MemoryLimit: 128 * 1024 * 1024,
		CPULimit:    0.5,
		Timeout:     5 * time.Second,
		PoolSize:    2,
	}
}
