package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/slok/patchcheck/internal/model"
)

var keyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseSpecs parses environment variable specs in the `KEY=VALUE` form, a bare `KEY`
// takes its value from the current process environment. Later specs override earlier ones.
func ParseSpecs(specs []string) (map[string]string, error) {
	vars := make(map[string]string, len(specs))
	for _, spec := range specs {
		key, value, hasValue := strings.Cut(spec, "=")
		if !keyRegexp.MatchString(key) {
			return nil, fmt.Errorf("invalid environment variable %q: %w", spec, model.ErrNotValid)
		}

		if !hasValue {
			v, ok := os.LookupEnv(key)
			if !ok {
				return nil, fmt.Errorf("environment variable %q is not set: %w", key, model.ErrNotValid)
			}
			value = v
		}

		vars[key] = value
	}

	return vars, nil
}

// Merge returns a new map with the base variables and the overrides on top.
func Merge(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// WithChecks returns a copy of the checks with the variables added to every check command.
func WithChecks(checks []model.CheckSpec, vars map[string]string) []model.CheckSpec {
	if len(vars) == 0 {
		return checks
	}

	res := make([]model.CheckSpec, 0, len(checks))
	for _, c := range checks {
		c.Command.Env = Merge(c.Command.Env, vars)
		res = append(res, c)
	}
	return res
}
