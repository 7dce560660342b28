package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/patchcheck/internal/config"
	"github.com/slok/patchcheck/internal/conventions"
	"github.com/slok/patchcheck/internal/log"
	"github.com/slok/patchcheck/internal/metrics"
	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/printer"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug           bool
	NoLog           bool
	NoColor         bool
	LoggerType      string
	ConfigPath      string
	Format          string
	MetricsTextfile string
	OTLPEndpoint    string
	OTLPInsecure    bool
	BaselineDir     string
	BaselineFiles   []string

	// Global instances.
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  log.Logger
	Metrics metrics.Recorder
	Tracer  trace.Tracer

	defaultConfigPath string
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{
		defaultConfigPath: conventions.DefaultConfigPath(homedir.HomeDir()),
	}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("config", "Path to the YAML configuration file.").Default(c.defaultConfigPath).StringVar(&c.ConfigPath)
	app.Flag("format", "Output format.").Default(printer.FormatJSON).EnumVar(&c.Format, printer.FormatJSON, printer.FormatTable)
	app.Flag("metrics-textfile", "Write the run Prometheus metrics to this file (textfile collector format).").StringVar(&c.MetricsTextfile)
	app.Flag("otlp-endpoint", "OTLP HTTP endpoint (host:port) to export traces to, disabled if empty.").StringVar(&c.OTLPEndpoint)
	app.Flag("otlp-insecure", "Use plain HTTP for the OTLP exporter.").BoolVar(&c.OTLPInsecure)
	app.Flag("baseline-dir", "Local directory the sandboxes are seeded from, replaces the configured baseline.").StringVar(&c.BaselineDir)
	app.Flag("baseline-file", "Baseline file in the form path=localfile, replaces the configured baseline (repeatable).").StringsVar(&c.BaselineFiles)

	return c
}

// LoadConfig loads the configuration file. A missing file on the default path
// means the default configuration. The CLI baseline flags take precedence over
// the configured baseline.
func (c RootCommand) LoadConfig(ctx context.Context) (model.Config, error) {
	cfg, err := c.loadConfigFile(ctx)
	if err != nil {
		return model.Config{}, err
	}

	baseline, ok, err := c.cliBaseline()
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid baseline: %w", err)
	}
	if ok {
		cfg.Baseline = baseline
	}

	return cfg, nil
}

func (c RootCommand) loadConfigFile(ctx context.Context) (model.Config, error) {
	path, err := filepath.Abs(c.ConfigPath)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid config path: %w", err)
	}

	repo := config.NewYAMLRepository(os.DirFS("/"))
	cfg, err := repo.GetConfig(ctx, path[1:])
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && c.ConfigPath == c.defaultConfigPath {
			c.Logger.Debugf("No config file at %q, using defaults", c.ConfigPath)
			return model.DefaultConfig(), nil
		}
		return model.Config{}, fmt.Errorf("could not load config %q: %w", c.ConfigPath, err)
	}

	c.Logger.Debugf("Config loaded from %q", c.ConfigPath)
	return cfg, nil
}

func (c RootCommand) cliBaseline() (model.Baseline, bool, error) {
	if c.BaselineDir == "" && len(c.BaselineFiles) == 0 {
		return model.Baseline{}, false, nil
	}

	files, err := ParseBaselineFiles(c.BaselineFiles)
	if err != nil {
		return model.Baseline{}, false, err
	}

	b := model.Baseline{SourceDir: c.BaselineDir, Files: files}
	if err := b.Validate(); err != nil {
		return model.Baseline{}, false, err
	}

	return b, true, nil
}

// ParseBaselineFiles parses `path=localfile` specs and returns the sandbox path
// mapped to the local file content.
func ParseBaselineFiles(specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	files := make(map[string]string, len(specs))
	for _, spec := range specs {
		path, local, ok := strings.Cut(spec, "=")
		if !ok || path == "" || local == "" {
			return nil, fmt.Errorf("baseline file %q must be in the form path=localfile: %w", spec, model.ErrNotValid)
		}
		if err := model.ValidateRelPath(path); err != nil {
			return nil, fmt.Errorf("baseline file %q: %w", path, err)
		}

		data, err := os.ReadFile(local)
		if err != nil {
			return nil, fmt.Errorf("could not read baseline file %q: %w", local, err)
		}
		files[path] = string(data)
	}

	return files, nil
}

// Printer returns the printer for the selected output format.
func (c RootCommand) Printer() printer.Printer {
	return printer.New(c.Format, c.Stdout)
}

func (c RootCommand) metrics() metrics.Recorder {
	if c.Metrics == nil {
		return metrics.Noop
	}
	return c.Metrics
}

// stdinSource is the diff source name used for the standard input.
const stdinSource = "-"

// diffInput is a diff and where it was read from.
type diffInput struct {
	Source string
	Diff   model.Diff
}

// readDiffs reads the diffs from the files, no files or `-` read the standard input.
func readDiffs(stdin io.Reader, paths []string) ([]diffInput, error) {
	if len(paths) == 0 {
		paths = []string{stdinSource}
	}

	readStdin := false
	inputs := make([]diffInput, 0, len(paths))
	for _, p := range paths {
		var data []byte
		var err error
		if p == stdinSource {
			if readStdin {
				return nil, fmt.Errorf("standard input can only be used once: %w", model.ErrNotValid)
			}
			readStdin = true
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(p)
		}
		if err != nil {
			return nil, fmt.Errorf("could not read diff %q: %w", p, err)
		}

		inputs = append(inputs, diffInput{Source: p, Diff: model.Diff(data)})
	}

	return inputs, nil
}
