package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/slok/patchcheck/cmd/patchcheck/commands"
	"github.com/slok/patchcheck/internal/log"
	loglogrus "github.com/slok/patchcheck/internal/log/logrus"
	metricsprometheus "github.com/slok/patchcheck/internal/metrics/prometheus"
	"github.com/slok/patchcheck/internal/tracing"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"

	telemetryFlushTimeout = 10 * time.Second
)

var errInterrupted = fmt.Errorf("interrupted by termination signal: %w", context.Canceled)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("patchcheck", "Validate, apply and verify unified diffs on ephemeral sandboxes.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	validateCmd := commands.NewValidateCommand(rootCmd, app)
	applyCmd := commands.NewApplyCommand(rootCmd, app)
	doctorCmd := commands.NewDoctorCommand(rootCmd, app)

	cmds := map[string]commands.Command{
		validateCmd.Name(): validateCmd,
		applyCmd.Name():    applyCmd,
		doctorCmd.Name():   doctorCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	// Telemetry.
	tp, err := tracing.NewProvider(ctx, tracing.ProviderConfig{
		Endpoint: rootCmd.OTLPEndpoint,
		Insecure: rootCmd.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("could not create tracer provider: %w", err)
	}
	rootCmd.Tracer = tp.Tracer()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			rootCmd.Logger.Warningf("Could not export traces: %s", err)
		}
	}()

	if rootCmd.MetricsTextfile != "" {
		reg := prometheus.NewRegistry()
		rec, err := metricsprometheus.NewRecorder(reg)
		if err != nil {
			return fmt.Errorf("could not create metrics recorder: %w", err)
		}
		rootCmd.Metrics = rec
		defer func() {
			if err := metricsprometheus.WriteTextfile(rootCmd.MetricsTextfile, reg); err != nil {
				rootCmd.Logger.Warningf("Could not write metrics: %s", err)
			}
		}()
	}

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				// An interrupted run never succeeds, results are incomplete.
				return errInterrupted
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(ctx context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Stdout is kept for the results.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
