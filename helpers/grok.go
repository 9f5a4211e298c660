package helpers

import (
	"fmt"
	"regexp"
	"slices"
)

var grokFieldRegex = regexp.MustCompile(`%{\w+:(\w+)}`)

// GrokFieldNames extracts the semantic field names from a grok pattern, e.g. %{DATA:region} -> region
func GrokFieldNames(grokPattern string) []string {
	matches := grokFieldRegex.FindAllStringSubmatch(grokPattern, -1)

	groupNames := make([]string, 0, len(matches))
	for _, match := range matches {
		groupNames = append(groupNames, match[1])
	}
	return groupNames
}

// RequireGrokFields returns an error naming the first required field the pattern does not capture
func RequireGrokFields(grokPattern string, required ...string) error {
	names := GrokFieldNames(grokPattern)
	for _, r := range required {
		if !slices.Contains(names, r) {
			return fmt.Errorf("grok pattern %q must capture field %q", grokPattern, r)
		}
	}
	return nil
}
