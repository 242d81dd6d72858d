// Package docker implements sandbox.Runner on top of the Docker Engine API.
//
// ISOLATION MODEL:
// Each run happens in a throwaway container with no network, a read-only
// root filesystem, an unprivileged user, and hard memory/CPU limits. The
// container is force-removed after the run regardless of outcome. Containers
// are pre-warmed per language by a Pool so a run doesn't pay container
// start-up latency.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/sakif/codementor/internal/sandbox"
)

var _ sandbox.Runner = (*Runner)(nil)

// Runner implements sandbox.Runner using Docker, with one pre-warmed
// container pool per configured language.
type Runner struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	pools  map[string]*Pool
}

// New connects to the Docker daemon, pulls every configured language image,
// and starts the per-language container pools. An unreachable daemon returns
// an error — the caller decides whether that is fatal (the server runs fine
// without the automated reviewer).
func New(cfg Config, logger *slog.Logger) (*Runner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("sandbox: creating docker client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for lang, li := range cfg.Languages {
		logger.Info("ensuring sandbox image is available",
			slog.String("language", lang),
			slog.String("image", li.Image),
		)
		reader, err := cli.ImagePull(ctx, li.Image, image.PullOptions{})
		if err != nil {
			cli.Close()
			return nil, fmt.Errorf("sandbox: pulling image %s: %w", li.Image, err)
		}
		// Read everything to block until the pull completes.
		io.Copy(io.Discard, reader)
		reader.Close()
	}

	r := &Runner{
		cli:    cli,
		config: cfg,
		logger: logger,
		pools:  make(map[string]*Pool, len(cfg.Languages)),
	}

	for lang, li := range cfg.Languages {
		pool := NewPool(cli, li.Image, cfg, logger)
		pool.Start()
		r.pools[lang] = pool
	}

	return r, nil
}

// Close shuts down every pool and the docker client.
func (r *Runner) Close() error {
	for _, p := range r.pools {
		p.Stop()
	}
	return r.cli.Close()
}

// Run executes the snippet in a sandboxed container for its language.
// Returns sandbox.ErrUnsupportedLanguage when no image is configured for it.
func (r *Runner) Run(ctx context.Context, req sandbox.RunRequest) (*sandbox.RunResult, error) {
	start := time.Now()

	pool, ok := r.pools[req.Language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sandbox.ErrUnsupportedLanguage, req.Language)
	}

	containerID, err := pool.GetContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("sandbox: acquiring container: %w", err)
	}

	// The container is single-use: force-remove it whatever happens, and
	// let the pool warm a replacement in the background.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := r.cli.ContainerRemove(cleanupCtx, containerID, container.RemoveOptions{
			Force: true,
		}); err != nil {
			r.logger.Error("failed to remove sandbox container",
				slog.String("id", containerID),
				slog.String("error", err.Error()),
			)
		}
	}()

	runCtx, runCancel := context.WithTimeout(ctx, r.config.Timeout)
	defer runCancel()

	// The pooled container idles on `sleep infinity`; the snippet runs as
	// an exec inside it, e.g. `python -c <code>`.
	cmd := append(append([]string{}, r.config.Languages[req.Language].Args...), req.Code)
	execResp, err := r.cli.ContainerExecCreate(runCtx, containerID, container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          cmd,
	})
	if err != nil {
		return nil, fmt.Errorf("sandbox: creating exec: %w", err)
	}

	attachResp, err := r.cli.ContainerExecAttach(runCtx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("sandbox: attaching to exec: %w", err)
	}
	defer attachResp.Close()

	var stdout, stderr bytes.Buffer

	done := make(chan struct{})
	go func() {
		// stdcopy demultiplexes the combined stream Docker returns
		// into separate stdout and stderr.
		_, _ = stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader)
		close(done)
	}()

	var exitCode int
	select {
	case <-done:
		inspectResp, err := r.cli.ContainerExecInspect(ctx, execResp.ID)
		if err == nil {
			exitCode = inspectResp.ExitCode
		}
	case <-runCtx.Done():
		// Same convention as the unix timeout(1) command.
		exitCode = 124
		stderr.WriteString("\nExecution timed out.\n")
	}

	return &sandbox.RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: time.Since(start),
	}, nil
}
