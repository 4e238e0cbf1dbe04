package core

import (
	"fmt"
	"regexp"
)

// envRegex matches {{ env.NAME }} placeholders.
var envRegex = regexp.MustCompile(`\{\{\s*env\.([A-Za-z0-9_]+)\s*\}\}`)

// ExpandEnv replaces every {{ env.NAME }} in input. An undefined variable
// is an error; a defined but empty one expands to "".
func ExpandEnv(input string, lookup LookupFunc) (string, error) {
	var firstErr error
	output := envRegex.ReplaceAllStringFunc(input, func(match string) string {
		if firstErr != nil {
			return match
		}
		key := envRegex.FindStringSubmatch(match)[1]
		val, ok := lookup(key)
		if !ok {
			firstErr = fmt.Errorf("undefined environment variable: %s", key)
			return match
		}
		return val
	})
	if firstErr != nil {
		return "", firstErr
	}
	return output, nil
}

// EnvReferences lists the variables input refers to, in order of
// appearance, without duplicates.
func EnvReferences(input string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range envRegex.FindAllStringSubmatch(input, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
