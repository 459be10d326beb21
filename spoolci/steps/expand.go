package steps

import (
	"fmt"
	"regexp"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv expands ${VAR} references against the run environment.
// Unlike shell interpolation this is strict: an unknown variable is an
// error, not an empty string.
func expandEnv(s string, env map[string]string) (string, error) {
	var missingVars []string

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]

		value, ok := env[varName]
		if !ok {
			missingVars = append(missingVars, varName)
			return match
		}
		return value
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing environment variables: %s", strings.Join(missingVars, ", "))
	}

	return result, nil
}
