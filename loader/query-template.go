package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/bqload/constants"
)

// Substitute replaces every key of params found in template with its value.
// Replacement is a single pass over template so text produced by a value is never substituted again.
// Keys that are missing from template are ignored.
func Substitute(template string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	// Longest keys first so a key that prefixes another cannot steal its match.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	replacements := make([]string, 0, len(params)*2)
	for _, k := range keys {
		replacements = append(replacements, k, params[k])
	}
	return strings.NewReplacer(replacements...).Replace(template)
}

// RenderInsertQuery substitutes the external table alias and the target table name into template.
// It returns a TemplateError if the template is blank, if either marker is absent or if a value is empty.
func RenderInsertQuery(template string, externalAlias string, targetTable string) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", &TemplateError{Reason: "template is empty"}
	}
	params := map[string]string{
		constants.ExternalTableMarker: externalAlias,
		constants.TargetTableMarker:   targetTable,
	}
	for _, marker := range []string{constants.ExternalTableMarker, constants.TargetTableMarker} {
		if strings.TrimSpace(params[marker]) == "" {
			return "", &TemplateError{Reason: fmt.Sprintf("missing value for marker %v", marker)}
		}
		if !strings.Contains(template, marker) {
			return "", &TemplateError{Reason: fmt.Sprintf("marker %v not found", marker)}
		}
	}
	return Substitute(template, params), nil
}
