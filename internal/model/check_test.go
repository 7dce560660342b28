package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/patchcheck/internal/model"
)

func TestCheckResults(t *testing.T) {
	tests := map[string]struct {
		results   []model.CheckResult
		expAllOK  bool
		expPassed int
		expFailed int
	}{
		"No checks should be all OK.": {
			expAllOK: true,
		},

		"All passing checks should be all OK.": {
			results:   []model.CheckResult{{Name: "lint", OK: true}, {Name: "tests", OK: true}},
			expAllOK:  true,
			expPassed: 2,
		},

		"A failing check should not be all OK.": {
			results:   []model.CheckResult{{Name: "lint", OK: false}, {Name: "tests", OK: true}},
			expAllOK:  false,
			expPassed: 1,
			expFailed: 1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(test.expAllOK, model.AllChecksOK(test.results))
			passed, failed := model.CountChecks(test.results)
			assert.Equal(test.expPassed, passed)
			assert.Equal(test.expFailed, failed)
		})
	}
}

func TestApplyResultPassed(t *testing.T) {
	assert := assert.New(t)

	assert.False(model.ApplyResult{Applied: false}.Passed())
	assert.True(model.ApplyResult{Applied: true}.Passed())
	assert.True(model.ApplyResult{Applied: true, Checks: []model.CheckResult{{OK: true}}}.Passed())
	assert.False(model.ApplyResult{Applied: true, Checks: []model.CheckResult{{OK: true}, {OK: false}}}.Passed())
}

func TestCommand(t *testing.T) {
	assert := assert.New(t)

	cmd := model.Command{Name: "flake8", Args: []string{"--max-line-length", "100", "."}}
	assert.NoError(cmd.Validate())
	assert.Equal("flake8 --max-line-length 100 .", cmd.String())

	assert.ErrorIs(model.Command{}.Validate(), model.ErrNotValid)
	assert.ErrorIs(model.Command{Name: "x", Timeout: -time.Second}.Validate(), model.ErrNotValid)

	assert.True(model.CommandResult{ExitCode: 0}.OK())
	assert.False(model.CommandResult{ExitCode: 1}.OK())
	assert.False(model.CommandResult{ExitCode: 0, TimedOut: true}.OK())
}

func TestDefaultChecks(t *testing.T) {
	checks := model.DefaultChecks()

	assert.Equal(t, []model.CheckSpec{
		{Name: "lint", Command: model.Command{Name: "flake8", Args: []string{"."}}},
		{Name: "tests", Command: model.Command{Name: "pytest", Args: []string{"-q"}}},
	}, checks)
	for _, c := range checks {
		assert.NoError(t, c.Validate())
	}
}
