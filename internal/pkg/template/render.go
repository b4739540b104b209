package template

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Vars holds the substitution values for {{placeholder}} markers.
type Vars map[string]string

var placeholderRegex = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Render substitutes {{key}} markers in content with the matching Vars
// entries. Placeholders with no matching key are left verbatim and their
// names are returned so the caller can surface a warning; silently stripping
// them hides misconfigured templates.
func Render(content string, vars Vars) (string, []string) {
	var unresolved []string
	seen := make(map[string]bool)

	rendered := placeholderRegex.ReplaceAllStringFunc(content, func(match string) string {
		key := placeholderRegex.FindStringSubmatch(match)[1]
		if value, ok := vars[key]; ok {
			return value
		}
		if !seen[key] {
			seen[key] = true
			unresolved = append(unresolved, key)
		}
		return match
	})

	return rendered, unresolved
}

// ExtractVariables returns the distinct placeholder names used in content,
// in order of first appearance.
func ExtractVariables(content string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, match := range placeholderRegex.FindAllStringSubmatch(content, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	return names
}

// FormatAmount renders a monetary amount as a plain number with two decimal
// places; the currency symbol is a separate template variable.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatDate renders a date the way recipients in the original deployment
// region read them, e.g. "01 Mar 2024".
func FormatDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}
