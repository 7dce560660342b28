package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/patchcheck/internal/app/apply"
	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/patch"
	"github.com/slok/patchcheck/internal/utils/env"
)

type ApplyCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	diffFile string
	noChecks bool
	envSpecs []string
}

// NewApplyCommand returns the apply command.
func NewApplyCommand(rootCmd *RootCommand, app *kingpin.Application) *ApplyCommand {
	c := &ApplyCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("apply", "Apply a diff on a sandbox and run the verification checks.")
	c.Cmd.Arg("diff-file", "Diff file to apply, '-' reads the standard input.").Required().StringVar(&c.diffFile)
	c.Cmd.Flag("no-checks", "Skip the verification checks.").BoolVar(&c.noChecks)
	c.Cmd.Flag("env", "Environment variable for the checks: KEY=VALUE or KEY to inherit from host (repeatable).").Short('e').StringsVar(&c.envSpecs)

	return c
}

func (c ApplyCommand) Name() string { return c.Cmd.FullCommand() }

func (c ApplyCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	vars, err := env.ParseSpecs(c.envSpecs)
	if err != nil {
		return fmt.Errorf("invalid --env: %w", err)
	}

	inputs, err := readDiffs(c.rootCmd.Stdin, []string{c.diffFile})
	if err != nil {
		return err
	}
	in := inputs[0]

	cfg, err := c.rootCmd.LoadConfig(ctx)
	if err != nil {
		return err
	}

	p, err := c.rootCmd.newPipeline(cfg)
	if err != nil {
		return err
	}

	applicator, err := patch.NewGitApplicator(p.toolConfig(*c.rootCmd))
	if err != nil {
		return fmt.Errorf("could not create patch applicator: %w", err)
	}

	verifier, err := p.verifier(*c.rootCmd, vars)
	if err != nil {
		return err
	}

	svc, err := apply.NewService(apply.ServiceConfig{
		Manager:    p.manager,
		Applicator: applicator,
		Verifier:   verifier,
		Baseline:   cfg.Baseline,
		Metrics:    c.rootCmd.metrics(),
		Tracer:     c.rootCmd.Tracer,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create apply service: %w", err)
	}

	res, err := svc.Run(ctx, apply.Request{Diff: in.Diff, NoChecks: c.noChecks})
	if err != nil {
		return fmt.Errorf("could not apply: %w", err)
	}

	if err := c.rootCmd.Printer().PrintApply(in.Source, *res); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	if !res.Applied {
		return fmt.Errorf("patch could not be applied")
	}
	if !res.Passed() {
		_, failed := model.CountChecks(res.Checks)
		return fmt.Errorf("%d check(s) failed", failed)
	}

	return nil
}
