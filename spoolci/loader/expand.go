package loader

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/vikavorkin/Spoolman/spoolci/schema"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnv performs ${VAR} expansion on environment variables
// Returns error if any variable is missing or if SPOOLCI_* is defined
func (l *Loader) ExpandEnv(env map[string]string) (map[string]string, error) {
	// Check for SPOOLCI_* user overrides
	for key := range env {
		if strings.HasPrefix(key, "SPOOLCI_") {
			return nil, fmt.Errorf("user cannot define SPOOLCI_* environment variables: %s", key)
		}
	}

	expanded := make(map[string]string)
	for key, value := range env {
		expandedValue, err := expandString(value)
		if err != nil {
			return nil, fmt.Errorf("failed to expand env var %s: %w", key, err)
		}
		expanded[key] = expandedValue
	}

	return expanded, nil
}

// expandString expands ${VAR} references in a string
func expandString(s string) (string, error) {
	var missingVars []string

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]

		value, ok := os.LookupEnv(varName)
		if !ok {
			missingVars = append(missingVars, varName)
			return match
		}
		return value
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing OS environment variables: %s", strings.Join(missingVars, ", "))
	}

	return result, nil
}

// MergeEnv merges job defaults, step env and user-provided env.
// Priority: user (CLI) > step > job defaults.
func MergeEnv(job *schema.Job, step *schema.Step, userEnv map[string]string) map[string]string {
	merged := make(map[string]string)
	for k, v := range job.Env {
		merged[k] = v
	}
	if step != nil {
		for k, v := range step.Env {
			merged[k] = v
		}
	}
	for k, v := range userEnv {
		merged[k] = v
	}
	return merged
}
