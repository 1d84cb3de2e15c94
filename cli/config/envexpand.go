// Package config handles qrare.yaml loading for the qrare commands.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// ExpandEnv substitutes environment references in a config document.
//
//	${VAR}          value of VAR, empty if unset
//	${VAR:-default} value of VAR, or default if unset or empty
//	${VAR:?message} value of VAR, or an error if unset or empty
//
// Every missing required variable is reported in one error.
func ExpandEnv(input string) (string, error) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, op, arg := groups[1], groups[2], groups[3]

		if value := os.Getenv(name); value != "" {
			return value
		}
		switch op {
		case "-":
			return arg
		case "?":
			if arg == "" {
				arg = "required"
			}
			missing = append(missing, fmt.Sprintf("%s: %s", name, arg))
		}
		return ""
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unset environment variables: %s", strings.Join(missing, "; "))
	}
	return out, nil
}
