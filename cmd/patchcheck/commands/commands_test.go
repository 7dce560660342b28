package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/patchcheck/internal/log"
	"github.com/slok/patchcheck/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestParseBaselineFiles(t *testing.T) {
	dir := t.TempDir()
	local := writeFile(t, dir, "example.py", "def add(a, b):\n    return a + b\n")

	tests := map[string]struct {
		specs    []string
		expFiles map[string]string
		expErr   bool
	}{
		"No specs should return no files.": {
			specs:    nil,
			expFiles: nil,
		},

		"A path=localfile spec should read the local file.": {
			specs:    []string{"pkg/example.py=" + local},
			expFiles: map[string]string{"pkg/example.py": "def add(a, b):\n    return a + b\n"},
		},

		"A spec without separator should fail.": {
			specs:  []string{"example.py"},
			expErr: true,
		},

		"A spec without local file should fail.": {
			specs:  []string{"example.py="},
			expErr: true,
		},

		"A path escaping the sandbox should fail.": {
			specs:  []string{"../example.py=" + local},
			expErr: true,
		},

		"An absolute path should fail.": {
			specs:  []string{"/etc/example.py=" + local},
			expErr: true,
		},

		"A missing local file should fail.": {
			specs:  []string{"example.py=" + filepath.Join(dir, "missing.py")},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			gotFiles, err := ParseBaselineFiles(test.specs)

			if test.expErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expFiles, gotFiles)
		})
	}
}

func TestReadDiffs(t *testing.T) {
	dir := t.TempDir()
	d1 := writeFile(t, dir, "1.diff", "diff one")
	d2 := writeFile(t, dir, "2.diff", "diff two")

	tests := map[string]struct {
		stdin     string
		paths     []string
		expInputs []diffInput
		expErr    bool
	}{
		"No paths should read the standard input.": {
			stdin:     "from stdin",
			expInputs: []diffInput{{Source: "-", Diff: "from stdin"}},
		},

		"Files should be read in order.": {
			paths: []string{d2, d1},
			expInputs: []diffInput{
				{Source: d2, Diff: "diff two"},
				{Source: d1, Diff: "diff one"},
			},
		},

		"Files and the standard input can be mixed.": {
			stdin: "from stdin",
			paths: []string{d1, "-"},
			expInputs: []diffInput{
				{Source: d1, Diff: "diff one"},
				{Source: "-", Diff: "from stdin"},
			},
		},

		"The standard input used twice should fail.": {
			paths:  []string{"-", "-"},
			expErr: true,
		},

		"A missing file should fail.": {
			paths:  []string{filepath.Join(dir, "missing.diff")},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			gotInputs, err := readDiffs(strings.NewReader(test.stdin), test.paths)

			if test.expErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expInputs, gotInputs)
		})
	}
}

func TestRootCommandLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yaml", `
patch:
  extra_args: ["--whitespace=nowarn"]
checks:
  - name: tests
    command: ["pytest", "-q"]
baseline:
  files:
    app.py: "print('config')\n"
`)
	badCfgFile := writeFile(t, dir, "bad.yaml", "runner:\n  type: qemu\n")
	localFile := writeFile(t, dir, "main.py", "print('cli')\n")
	defaultPath := filepath.Join(dir, ".patchcheck", "config.yaml")

	tests := map[string]struct {
		cmd       RootCommand
		expConfig func() model.Config
		expErr    bool
	}{
		"A missing default config file should use the defaults.": {
			cmd: RootCommand{ConfigPath: defaultPath},
			expConfig: func() model.Config {
				return model.DefaultConfig()
			},
		},

		"A missing explicit config file should fail.": {
			cmd:    RootCommand{ConfigPath: filepath.Join(dir, "missing.yaml")},
			expErr: true,
		},

		"An invalid config file should fail.": {
			cmd:    RootCommand{ConfigPath: badCfgFile},
			expErr: true,
		},

		"A config file should be loaded.": {
			cmd: RootCommand{ConfigPath: cfgFile},
			expConfig: func() model.Config {
				cfg := model.DefaultConfig()
				cfg.Patch.ExtraArgs = []string{"--whitespace=nowarn"}
				cfg.Checks = []model.CheckSpec{{Name: "tests", Command: model.Command{Name: "pytest", Args: []string{"-q"}}}}
				cfg.Baseline = model.Baseline{Files: map[string]string{"app.py": "print('config')\n"}}
				return cfg
			},
		},

		"CLI baseline flags should replace the configured baseline.": {
			cmd: RootCommand{
				ConfigPath:    cfgFile,
				BaselineDir:   dir,
				BaselineFiles: []string{"src/main.py=" + localFile},
			},
			expConfig: func() model.Config {
				cfg := model.DefaultConfig()
				cfg.Patch.ExtraArgs = []string{"--whitespace=nowarn"}
				cfg.Checks = []model.CheckSpec{{Name: "tests", Command: model.Command{Name: "pytest", Args: []string{"-q"}}}}
				cfg.Baseline = model.Baseline{SourceDir: dir, Files: map[string]string{"src/main.py": "print('cli')\n"}}
				return cfg
			},
		},

		"Invalid CLI baseline files should fail.": {
			cmd: RootCommand{
				ConfigPath:    defaultPath,
				BaselineFiles: []string{"../main.py=" + localFile},
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cmd := test.cmd
			cmd.Logger = log.Noop
			cmd.defaultConfigPath = defaultPath

			gotConfig, err := cmd.LoadConfig(context.Background())

			if test.expErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expConfig(), gotConfig)
		})
	}
}

func TestCheckBinaries(t *testing.T) {
	checks := []model.CheckSpec{
		{Name: "lint", Command: model.Command{Name: "flake8", Args: []string{"."}}},
		{Name: "tests", Command: model.Command{Name: "pytest"}},
	}

	assert.Equal(t, []string{"flake8", "pytest"}, checkBinaries(checks))
}
