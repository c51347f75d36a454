package model

import (
	"regexp"
	"strings"
)

var propertyRegex = regexp.MustCompile(`\$\{([A-Za-z_][\w.:-]*)\}`)

// ExtractProperties returns all ${Name} references in s, first-seen order, without duplicates.
func ExtractProperties(s string) []string {
	matches := propertyRegex.FindAllStringSubmatch(s, -1)
	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// ExpandProperties replaces ${Name} with lookup(Name). Unresolved references stay verbatim.
func ExpandProperties(s string, lookup func(string) (string, bool)) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return propertyRegex.ReplaceAllStringFunc(s, func(ref string) string {
		name := propertyRegex.FindStringSubmatch(ref)[1]
		if v, ok := lookup(name); ok {
			return v
		}
		return ref
	})
}
