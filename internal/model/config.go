package model

import (
	"fmt"
	"time"
)

// RunnerType is the kind of process runner the commands run on.
type RunnerType string

const (
	// RunnerTypeLocal runs commands as host processes.
	RunnerTypeLocal RunnerType = "local"
	// RunnerTypeDocker runs commands in ephemeral containers.
	RunnerTypeDocker RunnerType = "docker"
)

// Config is the patchcheck configuration.
type Config struct {
	Patch  PatchToolConfig
	Checks []CheckSpec
	Runner RunnerConfig
	// SandboxBaseDir is where sandboxes are created, the OS temp dir if empty.
	SandboxBaseDir string
	Baseline       Baseline
	// BatchConcurrency is the number of diffs validated at the same time.
	BatchConcurrency int
}

// PatchToolConfig is the configuration of the patch tool.
type PatchToolConfig struct {
	Tool      string
	ExtraArgs []string
	Timeout   time.Duration
}

// RunnerConfig is the configuration of the process runner.
type RunnerConfig struct {
	Type           RunnerType
	DefaultTimeout time.Duration
	MaxOutputBytes int
	Docker         *DockerRunnerConfig
}

// DockerRunnerConfig is the configuration of the Docker process runner.
type DockerRunnerConfig struct {
	Image   string
	Pull    bool
	Network bool
}

// DefaultConfig returns the configuration used when there is no config file.
func DefaultConfig() Config {
	return Config{
		Patch:    PatchToolConfig{Tool: "git"},
		Checks:   DefaultChecks(),
		Runner:   RunnerConfig{Type: RunnerTypeLocal},
		Baseline: DefaultBaseline(),
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	for _, check := range c.Checks {
		if err := check.Validate(); err != nil {
			return err
		}
	}

	switch c.Runner.Type {
	case RunnerTypeLocal:
	case RunnerTypeDocker:
		if c.Runner.Docker == nil || c.Runner.Docker.Image == "" {
			return fmt.Errorf("docker runner image is required: %w", ErrNotValid)
		}
	default:
		return fmt.Errorf("unknown runner type %q: %w", c.Runner.Type, ErrNotValid)
	}

	if err := c.Baseline.Validate(); err != nil {
		return err
	}

	return nil
}
