package commands

import (
	"fmt"

	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/patch"
	"github.com/slok/patchcheck/internal/process"
	"github.com/slok/patchcheck/internal/process/docker"
	"github.com/slok/patchcheck/internal/process/local"
	"github.com/slok/patchcheck/internal/sandbox"
	sandboxlocal "github.com/slok/patchcheck/internal/sandbox/local"
	"github.com/slok/patchcheck/internal/utils/env"
	"github.com/slok/patchcheck/internal/verify"
)

// pipeline holds the components shared by the commands.
type pipeline struct {
	cfg     model.Config
	manager sandbox.Manager
	// toolRunner runs the patch tool, always on the host.
	toolRunner process.Runner
	// checkRunner runs the verification checks on the configured runner.
	checkRunner process.Runner
}

func (c RootCommand) newPipeline(cfg model.Config) (*pipeline, error) {
	logger := c.Logger

	manager, err := sandboxlocal.NewManager(sandboxlocal.ManagerConfig{
		BaseDir: cfg.SandboxBaseDir,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create sandbox manager: %w", err)
	}

	toolRunner, err := local.NewRunner(local.RunnerConfig{
		DefaultTimeout: cfg.Runner.DefaultTimeout,
		MaxOutputBytes: cfg.Runner.MaxOutputBytes,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create local runner: %w", err)
	}

	var checkRunner process.Runner = toolRunner
	if cfg.Runner.Type == model.RunnerTypeDocker {
		checkRunner, err = newDockerRunner(cfg, c)
		if err != nil {
			return nil, err
		}
	}

	return &pipeline{
		cfg:         cfg,
		manager:     manager,
		toolRunner:  toolRunner,
		checkRunner: checkRunner,
	}, nil
}

func newDockerRunner(cfg model.Config, root RootCommand) (*docker.Runner, error) {
	if cfg.Runner.Docker == nil {
		return nil, fmt.Errorf("docker runner configuration is missing: %w", model.ErrNotValid)
	}

	r, err := docker.NewRunner(docker.RunnerConfig{
		Image:          cfg.Runner.Docker.Image,
		Pull:           cfg.Runner.Docker.Pull,
		Network:        cfg.Runner.Docker.Network,
		DefaultTimeout: cfg.Runner.DefaultTimeout,
		MaxOutputBytes: cfg.Runner.MaxOutputBytes,
		Logger:         root.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create docker runner: %w", err)
	}

	return r, nil
}

func (p *pipeline) toolConfig(root RootCommand) patch.ToolConfig {
	return patch.ToolConfig{
		Runner:    p.toolRunner,
		Tool:      p.cfg.Patch.Tool,
		ExtraArgs: p.cfg.Patch.ExtraArgs,
		Timeout:   p.cfg.Patch.Timeout,
		Logger:    root.Logger,
	}
}

func (p *pipeline) verifier(root RootCommand, vars map[string]string) (*verify.Runner, error) {
	v, err := verify.NewRunner(verify.RunnerConfig{
		Runner: p.checkRunner,
		// An empty non nil list keeps the checks disabled.
		Checks: env.WithChecks(p.cfg.Checks, vars),
		Logger: root.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create verifier: %w", err)
	}

	return v, nil
}
