package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/patch"
	"github.com/slok/patchcheck/internal/process"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("doctor", "Run preflight checks for the patch tool and the verification checks.")
	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.LoadConfig(ctx)
	if err != nil {
		return err
	}

	results, err := c.preflight(ctx, cfg)
	if err != nil {
		return err
	}

	if err := c.rootCmd.Printer().PrintPreflight(results); err != nil {
		return fmt.Errorf("could not print results: %w", err)
	}

	_, _, errs := model.CountPreflights(results)
	if errs > 0 {
		return fmt.Errorf("preflight checks failed with %d error(s)", errs)
	}

	return nil
}

func (c DoctorCommand) preflight(ctx context.Context, cfg model.Config) ([]model.PreflightResult, error) {
	tool := cfg.Patch.Tool
	if tool == "" {
		tool = patch.DefaultTool
	}

	// The patch tool always runs on the host.
	if cfg.Runner.Type != model.RunnerTypeDocker {
		return process.CheckBinaries(append([]string{tool}, checkBinaries(cfg.Checks)...)), nil
	}

	results := process.CheckBinaries([]string{tool})
	r, err := newDockerRunner(cfg, *c.rootCmd)
	if err != nil {
		return nil, err
	}

	return append(results, r.Check(ctx)...), nil
}

func checkBinaries(checks []model.CheckSpec) []string {
	bins := make([]string, 0, len(checks))
	for _, c := range checks {
		bins = append(bins, c.Command.Name)
	}
	return bins
}
