// Package template substitutes {{key}} placeholders in document skeletons.
// It knows nothing about contracts; the same renderer serves any template
// type that adopts the placeholder syntax.
package template

import "regexp"

var placeholderRE = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Render replaces every {{key}} occurrence with values[key], or the empty
// string when the key is absent. It is pure and total: malformed or unmatched
// braces pass through as literal text, never an error.
func Render(tmpl string, values map[string]string) string {
	return placeholderRE.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := placeholderRE.FindStringSubmatch(m)
		if len(sub) != 2 {
			return ""
		}
		return values[sub[1]]
	})
}

// Keys lists the distinct placeholder keys present in a template, in order of
// first appearance. Handy for owner-facing template previews.
func Keys(tmpl string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range placeholderRE.FindAllStringSubmatch(tmpl, -1) {
		if len(m) == 2 && !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}
