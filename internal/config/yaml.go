package config

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/patchcheck/internal/model"
)

// YAMLRepository loads patchcheck configuration from YAML files.
type YAMLRepository struct {
	fs fs.FS
}

// NewYAMLRepository creates a new YAML config repository.
func NewYAMLRepository(filesystem fs.FS) *YAMLRepository {
	return &YAMLRepository{fs: filesystem}
}

// GetConfig loads the configuration from a YAML file and returns a validated domain
// model. Missing settings get the default values.
func (r *YAMLRepository) GetConfig(ctx context.Context, path string) (model.Config, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Config{}, ctx.Err()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.Config{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return model.Config{}, fmt.Errorf("invalid configuration: %w: %w", err, model.ErrNotValid)
	}

	m := cfg.toModel()
	if err := m.Validate(); err != nil {
		return model.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return m, nil
}

// Config represents the YAML structure for patchcheck configuration.
type Config struct {
	Patch    PatchConfig    `yaml:"patch"`
	Checks   []CheckConfig  `yaml:"checks"`
	Runner   RunnerConfig   `yaml:"runner"`
	Sandbox  SandboxConfig  `yaml:"sandbox"`
	Baseline BaselineConfig `yaml:"baseline"`
	Batch    BatchConfig    `yaml:"batch"`
}

// PatchConfig represents the YAML structure for the patch tool configuration.
type PatchConfig struct {
	Tool      string        `yaml:"tool"`
	ExtraArgs []string      `yaml:"extra_args"`
	Timeout   time.Duration `yaml:"timeout"`
}

// CheckConfig represents the YAML structure for a verification check.
type CheckConfig struct {
	Name    string            `yaml:"name"`
	Command []string          `yaml:"command"`
	Timeout time.Duration     `yaml:"timeout"`
	Env     map[string]string `yaml:"env"`
}

// RunnerConfig represents the YAML structure for the process runner configuration.
type RunnerConfig struct {
	Type           string              `yaml:"type"`
	DefaultTimeout time.Duration       `yaml:"default_timeout"`
	MaxOutputBytes int                 `yaml:"max_output_bytes"`
	Docker         *DockerRunnerConfig `yaml:"docker,omitempty"`
}

// DockerRunnerConfig represents the YAML structure for the Docker runner configuration.
type DockerRunnerConfig struct {
	Image   string `yaml:"image"`
	Pull    bool   `yaml:"pull"`
	Network bool   `yaml:"network"`
}

// SandboxConfig represents the YAML structure for the sandbox configuration.
type SandboxConfig struct {
	BaseDir string `yaml:"base_dir"`
}

// BaselineConfig represents the YAML structure for the baseline configuration.
type BaselineConfig struct {
	SourceDir string            `yaml:"source_dir"`
	Files     map[string]string `yaml:"files"`
}

// BatchConfig represents the YAML structure for the batch validation configuration.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

func (c Config) validate() error {
	if c.Patch.Timeout < 0 {
		return fmt.Errorf("patch timeout can't be negative")
	}

	names := map[string]bool{}
	for i, check := range c.Checks {
		if check.Name == "" {
			return fmt.Errorf("check %d name is required", i)
		}
		if names[check.Name] {
			return fmt.Errorf("check %q is duplicated", check.Name)
		}
		names[check.Name] = true

		if len(check.Command) == 0 || check.Command[0] == "" {
			return fmt.Errorf("check %q command is required", check.Name)
		}
		if check.Timeout < 0 {
			return fmt.Errorf("check %q timeout can't be negative", check.Name)
		}
	}

	if err := c.Runner.validate(); err != nil {
		return fmt.Errorf("runner: %w", err)
	}

	if c.Batch.Concurrency < 0 {
		return fmt.Errorf("batch concurrency can't be negative")
	}

	return nil
}

func (c RunnerConfig) validate() error {
	switch model.RunnerType(c.Type) {
	case "", model.RunnerTypeLocal:
		if c.Docker != nil {
			return fmt.Errorf("docker settings require docker runner type")
		}
	case model.RunnerTypeDocker:
		if c.Docker == nil || c.Docker.Image == "" {
			return fmt.Errorf("docker image is required")
		}
	default:
		return fmt.Errorf("unknown type %q, expected local or docker", c.Type)
	}

	if c.DefaultTimeout < 0 {
		return fmt.Errorf("default timeout can't be negative")
	}
	if c.MaxOutputBytes < 0 {
		return fmt.Errorf("max output bytes can't be negative")
	}
	return nil
}

func (c Config) toModel() model.Config {
	cfg := model.DefaultConfig()

	if c.Patch.Tool != "" {
		cfg.Patch.Tool = c.Patch.Tool
	}
	cfg.Patch.ExtraArgs = c.Patch.ExtraArgs
	cfg.Patch.Timeout = c.Patch.Timeout

	// No checks key means the default checks, an empty list disables them.
	if c.Checks != nil {
		cfg.Checks = make([]model.CheckSpec, 0, len(c.Checks))
		for _, check := range c.Checks {
			cfg.Checks = append(cfg.Checks, model.CheckSpec{
				Name: check.Name,
				Command: model.Command{
					Name:    check.Command[0],
					Args:    check.Command[1:],
					Env:     check.Env,
					Timeout: check.Timeout,
				},
			})
		}
	}

	if c.Runner.Type != "" {
		cfg.Runner.Type = model.RunnerType(c.Runner.Type)
	}
	cfg.Runner.DefaultTimeout = c.Runner.DefaultTimeout
	cfg.Runner.MaxOutputBytes = c.Runner.MaxOutputBytes
	if c.Runner.Docker != nil {
		cfg.Runner.Docker = &model.DockerRunnerConfig{
			Image:   c.Runner.Docker.Image,
			Pull:    c.Runner.Docker.Pull,
			Network: c.Runner.Docker.Network,
		}
	}

	cfg.SandboxBaseDir = c.Sandbox.BaseDir

	if c.Baseline.SourceDir != "" || len(c.Baseline.Files) > 0 {
		cfg.Baseline = model.Baseline{
			SourceDir: c.Baseline.SourceDir,
			Files:     c.Baseline.Files,
		}
	}

	cfg.BatchConcurrency = c.Batch.Concurrency

	return cfg
}
