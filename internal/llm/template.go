package llm

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// FillTemplate substitutes {name} placeholders from vars in a single pass.
// A placeholder left unresolved is a fatal error; extra variables are
// ignored (callers may log them). The substitution is deliberately not a
// templating engine: no conditionals, no escaping, one scan.
func FillTemplate(tpl string, vars map[string]string) (string, error) {
	var unresolved []string
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(tpl, -1) {
		name := m[1]
		if _, ok := vars[name]; !ok && !seen[name] {
			seen[name] = true
			unresolved = append(unresolved, name)
		}
	}
	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return "", fmt.Errorf("unresolved placeholders: %s", strings.Join(unresolved, ", "))
	}

	filled := placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		return vars[m[1:len(m)-1]]
	})
	return filled, nil
}

// ExtraVars lists supplied variables the template never references, for
// debug logging at fill time.
func ExtraVars(tpl string, vars map[string]string) []string {
	used := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(tpl, -1) {
		used[m[1]] = true
	}
	var extras []string
	for name := range vars {
		if !used[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return extras
}
