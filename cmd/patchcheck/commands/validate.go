package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/patchcheck/internal/app/validate"
	"github.com/slok/patchcheck/internal/patch"
)

type ValidateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	diffFiles []string
}

// NewValidateCommand returns the validate command.
func NewValidateCommand(rootCmd *RootCommand, app *kingpin.Application) *ValidateCommand {
	c := &ValidateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("validate", "Dry-run diffs against the baseline without applying them.")
	c.Cmd.Arg("diff-file", "Diff files to validate, the standard input is used when none or '-'.").StringsVar(&c.diffFiles)

	return c
}

func (c ValidateCommand) Name() string { return c.Cmd.FullCommand() }

func (c ValidateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	inputs, err := readDiffs(c.rootCmd.Stdin, c.diffFiles)
	if err != nil {
		return err
	}

	cfg, err := c.rootCmd.LoadConfig(ctx)
	if err != nil {
		return err
	}

	p, err := c.rootCmd.newPipeline(cfg)
	if err != nil {
		return err
	}

	validator, err := patch.NewGitValidator(p.toolConfig(*c.rootCmd))
	if err != nil {
		return fmt.Errorf("could not create patch validator: %w", err)
	}

	svc, err := validate.NewService(validate.ServiceConfig{
		Manager:     p.manager,
		Validator:   validator,
		Baseline:    cfg.Baseline,
		Concurrency: cfg.BatchConcurrency,
		Metrics:     c.rootCmd.metrics(),
		Tracer:      c.rootCmd.Tracer,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create validate service: %w", err)
	}

	reqs := make([]validate.Request, 0, len(inputs))
	for _, in := range inputs {
		reqs = append(reqs, validate.Request{Diff: in.Diff})
	}

	results, err := svc.RunBatch(ctx, reqs)
	if err != nil {
		return fmt.Errorf("could not validate: %w", err)
	}

	pr := c.rootCmd.Printer()
	failed := 0
	for i, res := range results {
		if !res.OK {
			failed++
		}
		if err := pr.PrintValidate(inputs[i].Source, *res); err != nil {
			return fmt.Errorf("could not print result: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d diff(s) failed validation", failed, len(results))
	}

	return nil
}
