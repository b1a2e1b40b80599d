package analyze

import (
	"fmt"
	"regexp"
	"strings"
)

func sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// CountWords counts whitespace-split non-empty tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

var sectionRe = regexp.MustCompile(`(?m)^##\s+\S`)

// CountSections counts level-2 headings. Level-3 subsections do not count.
func CountSections(text string) int {
	return len(sectionRe.FindAllString(text, -1))
}

// ExampleCues are the phrases counted as worked examples in lectures. The
// retry feedback names them verbatim so the model can raise the count.
var ExampleCues = []string{"for example", "for instance", "such as", "consider", "imagine"}

var exampleRes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(ExampleCues))
	for i, cue := range ExampleCues {
		out[i] = regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(cue, " ", `\s+`) + `\b`)
	}
	return out
}()

// CountExamples counts case-insensitive word-bounded occurrences of the
// example cue phrases.
func CountExamples(text string) int {
	n := 0
	for _, re := range exampleRes {
		n += len(re.FindAllString(text, -1))
	}
	return n
}

var definedTermRe = regexp.MustCompile(`(?m)^\s*[-*]?\s*\*\*[^*\n]+\*\*\s*[:—-]`)

// CountDefinedTerms counts "**Term**: definition" style entries.
func CountDefinedTerms(text string) int {
	return len(definedTermRe.FindAllString(text, -1))
}

var numberedStepRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+\S`)

// CountNumberedSteps counts "1." / "2)" procedure lines.
func CountNumberedSteps(text string) int {
	return len(numberedStepRe.FindAllString(text, -1))
}

var bulletRe = regexp.MustCompile(`(?m)^\s*[-*]\s+\S`)

// CountBullets counts bulleted list entries.
func CountBullets(text string) int {
	return len(bulletRe.FindAllString(text, -1))
}

var tableRowRe = regexp.MustCompile(`(?m)^\s*\|.+\|\s*$`)

// CountTables counts markdown tables (separator rows).
func CountTables(text string) int {
	n := 0
	for _, row := range tableRowRe.FindAllString(text, -1) {
		if strings.Contains(row, "---") {
			n++
		}
	}
	return n
}

// sectionBody returns the text under the first level-2 heading whose title
// contains name (case-insensitive), up to the next level-2 heading.
func sectionBody(text string, name string) string {
	lines := strings.Split(text, "\n")
	var body []string
	in := false
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "## ") {
			if in {
				break
			}
			title := strings.ToLower(strings.TrimPrefix(trimmed, "## "))
			in = strings.Contains(title, strings.ToLower(name))
			continue
		}
		if in {
			body = append(body, l)
		}
	}
	return strings.Join(body, "\n")
}
