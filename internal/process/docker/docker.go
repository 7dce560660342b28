package docker

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/oklog/ulid/v2"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/slok/patchcheck/internal/conventions"
	"github.com/slok/patchcheck/internal/log"
	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/process"
)

const (
	// WorkspaceDir is where the working directory is mounted inside the container.
	WorkspaceDir = conventions.ContainerWorkspaceDir

	defaultTimeout        = 5 * time.Minute
	defaultMaxOutputBytes = 1 << 20 // 1 MiB.
	cleanupTimeout        = 30 * time.Second
)

// DockerClient is the interface for Docker operations that we use.
// This allows us to mock the Docker client for testing.
type DockerClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
}

// RunnerConfig is the configuration for the Docker process runner.
type RunnerConfig struct {
	// Image is the container image the commands run in. Required.
	Image string
	// Pull pulls the image before every run, otherwise it must exist locally.
	Pull bool
	// Network enables container networking, disabled by default.
	Network bool
	// User is the container user (uid:gid), defaults to the current user so the
	// files written in the mounted sandbox can be removed afterwards.
	User           string
	DefaultTimeout time.Duration
	MaxOutputBytes int
	Client         DockerClient
	Logger         log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Image == "" {
		return fmt.Errorf("image is required")
	}
	if c.User == "" {
		c.User = fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
	}
	if c.DefaultTimeout == 0 {
		c.DefaultTimeout = defaultTimeout
	}
	if c.MaxOutputBytes == 0 {
		c.MaxOutputBytes = defaultMaxOutputBytes
	}
	if c.Client == nil {
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return fmt.Errorf("could not create Docker client: %w", err)
		}
		c.Client = cli
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "process.Docker"})
	return nil
}

// Runner runs commands inside ephemeral Docker containers with the working
// directory bind mounted on WorkspaceDir.
type Runner struct {
	image          string
	pull           bool
	network        bool
	user           string
	defaultTimeout time.Duration
	maxOutputBytes int
	client         DockerClient
	logger         log.Logger
}

// NewRunner returns a new Docker process runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Runner{
		image:          cfg.Image,
		pull:           cfg.Pull,
		network:        cfg.Network,
		user:           cfg.User,
		defaultTimeout: cfg.DefaultTimeout,
		maxOutputBytes: cfg.MaxOutputBytes,
		client:         cfg.Client,
		logger:         cfg.Logger,
	}, nil
}

var _ process.Runner = &Runner{}

// Run runs the command in a new container and removes the container afterwards.
func (r *Runner) Run(ctx context.Context, cmd model.Command, dir string) (*model.CommandResult, error) {
	logger := r.logger.WithCtxValues(ctx)

	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("working directory %q is not a directory: %w", dir, model.ErrLaunch)
	}

	if r.pull {
		if err := r.pullImage(ctx); err != nil {
			return nil, fmt.Errorf("could not pull image %q: %w: %w", r.image, model.ErrLaunch, err)
		}
	}

	timeout := cmd.Timeout
	if timeout == 0 {
		timeout = r.defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name := "patchcheck-" + strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String())
	containerCfg := &container.Config{
		Image:           r.image,
		Cmd:             append([]string{cmd.Name}, cmd.Args...),
		WorkingDir:      WorkspaceDir,
		Env:             envList(cmd.Env),
		User:            r.user,
		NetworkDisabled: !r.network,
		Labels:          map[string]string{conventions.ContainerSandboxLabel: dir},
	}
	hostCfg := &container.HostConfig{
		Binds:       []string{dir + ":" + WorkspaceDir},
		CapDrop:     []string{"ALL"},
		SecurityOpt: []string{"no-new-privileges"},
	}
	if !r.network {
		hostCfg.NetworkMode = container.NetworkMode("none")
	}

	resp, err := r.client.ContainerCreate(runCtx, containerCfg, hostCfg, nil, nil, name)
	if err != nil {
		return nil, fmt.Errorf("could not create container: %w: %w", model.ErrLaunch, err)
	}

	// Always remove the container, with its own context so cancellation doesn't stop the cleanup.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()
		err := r.client.ContainerRemove(cleanupCtx, resp.ID, container.RemoveOptions{Force: true, RemoveVolumes: true})
		if err != nil {
			logger.Warningf("Could not remove container %s: %s", resp.ID, err)
		}
	}()

	waitCh, waitErrCh := r.client.ContainerWait(runCtx, resp.ID, container.WaitConditionNextExit)

	logger.Debugf("Running %q in container %s (image %s, timeout %s)", cmd.String(), name, r.image, timeout)
	start := time.Now()
	if err := r.client.ContainerStart(runCtx, resp.ID, container.StartOptions{}); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("running %q: %w", cmd.Name, ctx.Err())
		}
		return nil, fmt.Errorf("could not start container: %w: %w", model.ErrLaunch, err)
	}

	res := &model.CommandResult{}
	select {
	case w := <-waitCh:
		res.ExitCode = int(w.StatusCode)
		if w.Error != nil && w.Error.Message != "" {
			logger.Warningf("Container %s wait error: %s", resp.ID, w.Error.Message)
		}
	case err := <-waitErrCh:
		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("running %q: %w", cmd.Name, ctx.Err())
		case runCtx.Err() != nil:
			res.ExitCode = -1
			res.TimedOut = true
		default:
			return nil, fmt.Errorf("waiting for container: %w", err)
		}
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return nil, fmt.Errorf("running %q: %w", cmd.Name, ctx.Err())
		}
		res.ExitCode = -1
		res.TimedOut = true
	}
	res.Duration = time.Since(start)

	if res.TimedOut {
		logger.Warningf("Command %q killed after %s timeout", cmd.Name, timeout)
	}

	// Logs are still available until the container is removed.
	logsCtx, logsCancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer logsCancel()
	if err := r.readLogs(logsCtx, resp.ID, res); err != nil {
		return nil, fmt.Errorf("could not read container logs: %w", err)
	}

	logger.Debugf("Command %q exited with code %d after %s", cmd.Name, res.ExitCode, res.Duration)

	return res, nil
}

// Check performs the Docker preflight checks.
func (r *Runner) Check(ctx context.Context) []model.PreflightResult {
	ping, err := r.client.Ping(ctx)
	if err != nil {
		return []model.PreflightResult{{
			ID:      "docker_daemon",
			Message: fmt.Sprintf("Docker daemon not reachable: %s", err),
			Status:  model.PreflightStatusError,
		}}
	}

	results := []model.PreflightResult{{
		ID:      "docker_daemon",
		Message: fmt.Sprintf("Docker daemon reachable (API %s)", ping.APIVersion),
		Status:  model.PreflightStatusOK,
	}}

	if r.network {
		results = append(results, model.PreflightResult{
			ID:      "docker_network",
			Message: "Check containers have network access",
			Status:  model.PreflightStatusWarning,
		})
	}

	return results
}

func (r *Runner) pullImage(ctx context.Context) error {
	rc, err := r.client.ImagePull(ctx, r.image, image.PullOptions{})
	if err != nil {
		return err
	}
	defer rc.Close()

	// The pull only completes once the progress stream is consumed.
	_, err = io.Copy(io.Discard, rc)
	return err
}

func (r *Runner) readLogs(ctx context.Context, id string, res *model.CommandResult) error {
	rc, err := r.client.ContainerLogs(ctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return err
	}
	defer rc.Close()

	stdout := process.NewLimitedBuffer(r.maxOutputBytes)
	stderr := process.NewLimitedBuffer(r.maxOutputBytes)
	if _, err := stdcopy.StdCopy(stdout, stderr, rc); err != nil {
		return err
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.Truncated = stdout.Truncated() || stderr.Truncated()
	return nil
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	l := make([]string, 0, len(keys))
	for _, k := range keys {
		l = append(l, k+"="+env[k])
	}
	return l
}
