package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/utils/env"
)

func TestParseSpecs(t *testing.T) {
	t.Setenv("PATCHCHECK_FROM_HOST", "host-value")

	tests := map[string]struct {
		specs   []string
		expVars map[string]string
		expErr  error
	}{
		"No specs should return empty vars.": {
			specs:   nil,
			expVars: map[string]string{},
		},

		"KEY=VALUE should parse.": {
			specs:   []string{"FOO=bar", "EMPTY="},
			expVars: map[string]string{"FOO": "bar", "EMPTY": ""},
		},

		"Values with equal signs should keep them.": {
			specs:   []string{"OPTS=a=b=c"},
			expVars: map[string]string{"OPTS": "a=b=c"},
		},

		"KEY should inherit from the host.": {
			specs:   []string{"PATCHCHECK_FROM_HOST"},
			expVars: map[string]string{"PATCHCHECK_FROM_HOST": "host-value"},
		},

		"Later specs should override earlier ones.": {
			specs:   []string{"FOO=one", "FOO=two"},
			expVars: map[string]string{"FOO": "two"},
		},

		"A missing inherited var should fail.": {
			specs:  []string{"PATCHCHECK_DOES_NOT_EXIST"},
			expErr: model.ErrNotValid,
		},

		"An invalid key should fail.": {
			specs:  []string{"1INVALID=value"},
			expErr: model.ErrNotValid,
		},

		"An empty spec should fail.": {
			specs:  []string{""},
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			gotVars, err := env.ParseSpecs(test.specs)

			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expVars, gotVars)
		})
	}
}

func TestWithChecks(t *testing.T) {
	checks := []model.CheckSpec{
		{Name: "lint", Command: model.Command{Name: "flake8"}},
		{Name: "tests", Command: model.Command{Name: "pytest", Env: map[string]string{"A": "1", "B": "2"}}},
	}

	got := env.WithChecks(checks, map[string]string{"B": "override", "C": "3"})

	exp := []model.CheckSpec{
		{Name: "lint", Command: model.Command{Name: "flake8", Env: map[string]string{"B": "override", "C": "3"}}},
		{Name: "tests", Command: model.Command{Name: "pytest", Env: map[string]string{"A": "1", "B": "override", "C": "3"}}},
	}
	assert.Equal(t, exp, got)

	// Originals are not mutated.
	assert.Nil(t, checks[0].Command.Env)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, checks[1].Command.Env)

	// No vars returns the same checks.
	assert.Equal(t, checks, env.WithChecks(checks, nil))
}
